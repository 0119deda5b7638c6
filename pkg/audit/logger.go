package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Logger records run events and answers queries over them.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// Discard is a Logger that records nothing
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(*Event) error { return nil }

func (discard) Query(Filter) ([]*Event, error) { return []*Event{}, nil }

func (discard) Close() error { return nil }

// FileLogger appends events to a JSON-lines file. A file over
// RotationConfig.MaxSize is renamed to <path>.<timestamp> before the next
// write, keeping at most MaxBackups such files.
type FileLogger struct {
	path     string
	rotation RotationConfig
	log      *logrus.Entry

	mu  sync.RWMutex
	out *os.File
	enc *json.Encoder
}

// RotationConfig bounds the run log on disk. Zero values disable the limit.
type RotationConfig struct {
	MaxSize    int64 // bytes
	MaxBackups int
}

// backupStamp names rotated files. Fixed width keeps lexical order
// chronological.
const backupStamp = "20060102-150405.000000000"

// NewFileLogger opens path for appending, creating its directory.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{
		path:     path,
		rotation: rotation,
		log:      util.Logger.WithField("component", "audit"),
	}
	if err := l.open(); err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.out, l.enc = f, json.NewEncoder(f)
	return nil
}

// Log appends event, rotating first when the file is full.
func (l *FileLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full() {
		if err := l.rotate(); err != nil {
			return fmt.Errorf("rotating audit log: %w", err)
		}
	}
	return l.enc.Encode(event)
}

func (l *FileLogger) full() bool {
	if l.rotation.MaxSize <= 0 {
		return false
	}
	info, err := l.out.Stat()
	return err == nil && info.Size() >= l.rotation.MaxSize
}

// Query returns the events of the current file that match filter, oldest
// first. Unparsable lines are logged and skipped. A missing file has no
// events.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []*Event
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		e := new(Event)
		if err := json.Unmarshal(sc.Bytes(), e); err != nil {
			l.log.Warnf("Skipping malformed run log line %d: %v", line, err)
			continue
		}
		if filter.Match(e) {
			events = append(events, e)
		}
	}
	return page(events, filter.Offset, filter.Limit), sc.Err()
}

// page applies offset, then limit. A limit of zero or less keeps the rest.
func page(events []*Event, offset, limit int) []*Event {
	if offset > 0 {
		if offset >= len(events) {
			return nil
		}
		events = events[offset:]
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

// Match reports whether e passes every set field of f.
func (f Filter) Match(e *Event) bool {
	switch {
	case f.Device != "" && e.Device != f.Device,
		f.User != "" && e.User != f.User,
		f.Operation != "" && e.Operation != f.Operation,
		f.RunID != "" && e.RunID != f.RunID,
		!f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime),
		!f.EndTime.IsZero() && e.Timestamp.After(f.EndTime),
		f.SuccessOnly && !e.Success,
		f.FailureOnly && e.Success:
		return false
	}
	return true
}

// rotate moves the current file aside and starts a new one. Called with
// l.mu held.
func (l *FileLogger) rotate() error {
	if err := l.out.Close(); err != nil {
		return err
	}
	backup := l.path + "." + time.Now().Format(backupStamp)
	if err := os.Rename(l.path, backup); err != nil {
		return err
	}
	if err := l.open(); err != nil {
		return err
	}
	if l.rotation.MaxBackups > 0 {
		l.prune()
	}
	return nil
}

// prune removes the oldest backups beyond MaxBackups.
func (l *FileLogger) prune() {
	backups, err := filepath.Glob(l.path + ".*")
	if err != nil {
		return
	}
	sort.Strings(backups)
	for len(backups) > l.rotation.MaxBackups {
		if err := os.Remove(backups[0]); err != nil {
			l.log.Warnf("Could not remove old run log %s: %v", backups[0], err)
		}
		backups = backups[1:]
	}
}
