// Package neterr classifies errors surfaced by the network execution core
// so that retry, circuit-breaker, and caller code can make decisions without
// string matching.
package neterr

import (
	"errors"
	"fmt"
)

// Kind categorizes a classified error.
type Kind int8

const (
	// KindUnknown is the default for unclassified errors.
	KindUnknown Kind = iota
	// KindConnection indicates a transport-level connect failure.
	KindConnection
	// KindTimeout indicates the call exceeded its deadline.
	KindTimeout
	// KindAuth indicates an authentication failure (401).
	KindAuth
	// KindNotFound indicates a 404-equivalent response.
	KindNotFound
	// KindRateLimit indicates a 429-equivalent response.
	KindRateLimit
	// KindServer indicates a 5xx-equivalent response.
	KindServer
	// KindAPI is a catch-all for other non-2xx responses.
	KindAPI
	// KindSDK wraps an error raised by a vendor SDK adapter.
	KindSDK
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindAPI:
		return "api"
	case KindSDK:
		return "sdk"
	default:
		return "unknown"
	}
}

// Error is a classified network error carrying enough context for retry
// policies and callers to react without parsing message text.
type Error struct {
	Cause      error
	Message    string
	Body       string
	Kind       Kind
	StatusCode int
	RetryAfter float64 // seconds; only meaningful when Kind == KindRateLimit
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s error (status %d)", e.Kind, e.StatusCode)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a classified error with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping another error.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Cause: cause, Message: message}
}

// WithStatus creates a classified error carrying an HTTP-style status code.
func WithStatus(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message}
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// TypeOf returns the classified kind of err, or KindUnknown if unclassified.
func TypeOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinel policy/lifecycle errors — these are not carriers of response
// metadata, so plain sentinel values (rather than *Error) are enough.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrExecutorNotRunning is returned when submit is called before start or after stop.
	ErrExecutorNotRunning = errors.New("executor is not running")
	// ErrQueueBackpressure is returned by Executor.Submit if the work queue does not accept the task.
	ErrQueueBackpressure = errors.New("work queue is at capacity")
	// ErrEndpointClosed is returned when get_client is called on a closed endpoint.
	ErrEndpointClosed = errors.New("endpoint is closed")
	// ErrUnsupportedTransport is returned for an endpoint config naming an unknown transport.
	ErrUnsupportedTransport = errors.New("unsupported transport type")
)
