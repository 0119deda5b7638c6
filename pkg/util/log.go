package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process logger used by the CLI and, unless another logger is
// injected, by the collaborators that talk to devices.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// ConfigureLogging applies the CLI logging flags: warnings only unless
// verbose, text unless jsonFormat.
func ConfigureLogging(verbose, jsonFormat bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.WarnLevel)
	}
	if jsonFormat {
		SetJSONFormat()
	}
}

// WithDevice returns a logger with device context
func WithDevice(device string) *logrus.Entry {
	return Logger.WithField("device", device)
}

// WithOperation returns a logger with operation context
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

// WithRun returns a logger tagged with a run ID
func WithRun(runID string) *logrus.Entry {
	return Logger.WithField("run", runID)
}

// EntryOrDefault returns e, or a bare entry on Logger when e is nil.
func EntryOrDefault(e *logrus.Entry) *logrus.Entry {
	if e != nil {
		return e
	}
	return logrus.NewEntry(Logger)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
