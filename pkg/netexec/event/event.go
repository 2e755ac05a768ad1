// Package event defines the mutable lifecycle handle returned to callers of
// the network execution core in lieu of a direct result.
package event

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is one of the monotonic lifecycle states a request passes through.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCalling    Status = "CALLING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// LogEntry is a single append-only log record.
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// Descriptor captures the request as submitted: where it goes and what it carries.
type Descriptor struct {
	EndpointURL  string
	Method       string
	Headers      map[string]string
	Payload      any
	TokensNeeded int
}

// Result captures a completed call's response.
type Result struct {
	StatusCode int
	Headers    map[string]string
	Body       any
}

// ErrorInfo captures a failed call's error.
type ErrorInfo struct {
	Kind    string
	Message string
	Trace   string
}

// Timing holds the five optional lifecycle timestamps, each set at most once.
type Timing struct {
	CreatedAt           time.Time
	QueuedAt            time.Time
	ProcessingStartedAt time.Time
	CallStartedAt       time.Time
	CompletedAt         time.Time
}

// Event is the mutable lifecycle handle for a single submitted request. It is
// written only by the worker that owns it (and the closure it runs); callers
// only read it. Every accessor takes the event's mutex, so callers may read
// concurrently with the worker's writes.
type Event struct {
	mu sync.Mutex

	id         string
	status     Status
	descriptor Descriptor
	result     Result
	errInfo    ErrorInfo
	timing     Timing
	logs       []LogEntry
	metadata   map[string]any
}

// New creates a request event in status Pending, stamping the created-at timestamp.
func New(descriptor Descriptor, metadata map[string]any) *Event {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Event{
		id:         uuid.New().String(),
		status:     StatusPending,
		descriptor: descriptor,
		metadata:   metadata,
		timing:     Timing{CreatedAt: time.Now().UTC()},
	}
}

// ID returns the request's opaque identity.
func (e *Event) ID() string {
	return e.id
}

// Status returns the current lifecycle status.
func (e *Event) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Descriptor returns a copy of the request descriptor.
func (e *Event) Descriptor() Descriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.descriptor
}

// Result returns the terminal result, valid only once Status() == StatusCompleted.
func (e *Event) Result() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Err returns the terminal error info, valid only once Status() == StatusFailed.
func (e *Event) Err() ErrorInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errInfo
}

// Timing returns a copy of the timestamps recorded so far.
func (e *Event) Timing() Timing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing
}

// Logs returns a copy of the append-only log.
func (e *Event) Logs() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LogEntry, len(e.logs))
	copy(out, e.logs)
	return out
}

// Metadata returns the free-form metadata supplied at submit time.
func (e *Event) Metadata() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metadata
}

// AddLog appends a timestamped message. Never removed or edited.
func (e *Event) AddLog(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = append(e.logs, LogEntry{
		Timestamp: time.Now().UTC(),
		Message:   fmt.Sprintf(format, args...),
	})
}

// UpdateStatus transitions to newStatus, stamping the matching timestamp the
// first time it is reached. Transitions are expected to be monotonic along
// Pending -> Queued -> Processing -> Calling -> Completed or Failed, with
// Cancelled allowed from any non-terminal state; callers
// (the executor and its workers) are responsible for only calling this in
// the right order — the event itself does not reject out-of-order calls,
// matching the source lifecycle object it mirrors.
func (e *Event) UpdateStatus(newStatus Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.status
	e.status = newStatus
	now := time.Now().UTC()

	if old != newStatus {
		e.logs = append(e.logs, LogEntry{Timestamp: now, Message: fmt.Sprintf("status changed from %s to %s", old, newStatus)})
	}

	switch newStatus {
	case StatusQueued:
		if e.timing.QueuedAt.IsZero() {
			e.timing.QueuedAt = now
		}
	case StatusProcessing:
		if e.timing.ProcessingStartedAt.IsZero() {
			e.timing.ProcessingStartedAt = now
		}
	case StatusCalling:
		if e.timing.CallStartedAt.IsZero() {
			e.timing.CallStartedAt = now
		}
	case StatusCompleted, StatusFailed, StatusCancelled:
		if e.timing.CompletedAt.IsZero() {
			e.timing.CompletedAt = now
		}
	}
}

// SetResult records a successful response and transitions to Completed.
func (e *Event) SetResult(statusCode int, headers map[string]string, body any) {
	e.mu.Lock()
	e.result = Result{StatusCode: statusCode, Headers: headers, Body: body}
	e.mu.Unlock()

	e.AddLog("call completed with status code %d", statusCode)
	e.UpdateStatus(StatusCompleted)
}

// SetError records a failed call and transitions to Failed.
func (e *Event) SetError(kind, message, trace string) {
	e.mu.Lock()
	e.errInfo = ErrorInfo{Kind: kind, Message: message, Trace: trace}
	e.mu.Unlock()

	e.AddLog("call failed: %s - %s", kind, message)
	e.UpdateStatus(StatusFailed)
}

// Cancel marks the event Cancelled. It may supersede any non-terminal state.
func (e *Event) Cancel(reason string) {
	e.AddLog("cancelled: %s", reason)
	e.UpdateStatus(StatusCancelled)
}

// IsTerminal reports whether the event has reached one of its terminal states.
func (e *Event) IsTerminal() bool {
	switch e.Status() {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
