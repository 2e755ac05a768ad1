// Package metrics defines the recorder interface the executor uses
// to publish operational counters, generalized from per-model LLM labels to
// per-endpoint network-call labels.
package metrics

import "time"

// Recorder records metrics for a network execution core instance.
type Recorder interface {
	// ObserveRequest records the outcome of a completed call.
	ObserveRequest(endpoint, status string, tokens int, success bool, duration time.Duration)
	// IncThrottle records a rate-limiter throttling event.
	IncThrottle(endpoint, reason string)
	// IncBackpressure records a queue backpressure rejection.
	IncBackpressure(endpoint string)
	// ObserveQueueWait records time a task spent waiting on a rate limiter.
	ObserveQueueWait(endpoint string, duration time.Duration)
	// SetCircuitState records the circuit breaker's current state (0=closed,1=open,2=half_open).
	SetCircuitState(endpoint string, state int)
}

// NoopRecorder discards everything; used when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op recorder.
func Nop() Recorder { return &NoopRecorder{} }

func (NoopRecorder) ObserveRequest(string, string, int, bool, time.Duration) {}
func (NoopRecorder) IncThrottle(string, string)                             {}
func (NoopRecorder) IncBackpressure(string)                                 {}
func (NoopRecorder) ObserveQueueWait(string, time.Duration)                 {}
func (NoopRecorder) SetCircuitState(string, int)                           {}
