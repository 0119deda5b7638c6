// Package audit provides a JSON-lines run log for analysis, fetch and probe
// operations.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Operations recorded in the run log
const (
	OpAnalyze = "analyze"
	OpFetch   = "fetch"
	OpProbe   = "probe"
	OpFleet   = "fleet"
)

// Severity indicates the importance of an audit event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one entry of the run log
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	User      string         `json:"user"`
	Device    string         `json:"device"`
	Operation string         `json:"operation"`
	RunID     string         `json:"run_id,omitempty"`
	Source    string         `json:"source,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Severity  Severity       `json:"severity"`
	Duration  time.Duration  `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Device      string
	User        string
	Operation   string
	RunID       string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, device, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Device:    device,
		Operation: operation,
		Severity:  SeverityInfo,
	}
}

// WithRunID ties the event to a fleet or analysis run
func (e *Event) WithRunID(id string) *Event {
	e.RunID = id
	return e
}

// WithSource records where the configuration came from (file path or host)
func (e *Event) WithSource(source string) *Event {
	e.Source = source
	return e
}

// WithCounts sets per-category counts
func (e *Event) WithCounts(counts map[string]int) *Event {
	e.Counts = counts
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	e.Severity = SeverityError
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithWarning keeps the event successful but raises its severity
func (e *Event) WithWarning(msg string) *Event {
	e.Severity = SeverityWarning
	e.Error = msg
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}
