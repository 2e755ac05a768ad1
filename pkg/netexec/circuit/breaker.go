// Package circuit implements a circuit breaker state machine that
// short-circuits calls to a failing dependency.
package circuit

import (
	"sync"
	"time"

	"netexec/pkg/neterr"
)

// State is one of the three circuit breaker states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Classifier reports whether err should be excluded from failure counting.
// Excluded errors still propagate to the caller but do not advance the
// consecutive-failure count or trip the breaker.
type Classifier func(err error) bool

// Config parameterizes a Breaker.
type Config struct {
	// FailureThreshold is the number of consecutive (net) failures in
	// Closed that trips the breaker to Open.
	FailureThreshold int
	// RecoveryTimeout is how long the breaker stays Open before allowing a
	// probe call in HalfOpen.
	RecoveryTimeout time.Duration
	// HalfOpenMaxCalls bounds the number of concurrent probe calls admitted
	// while HalfOpen.
	HalfOpenMaxCalls int
	// Exclude classifies errors that should not count as breaker failures.
	// A nil Exclude counts every non-nil error as a failure.
	Exclude Classifier
}

// Breaker is a Closed/Open/HalfOpen circuit breaker. A single success while
// HalfOpen closes it; a single failure while HalfOpen reopens it.
type Breaker struct {
	cfg Config

	mu              sync.Mutex
	state           State
	consecutiveFail int
	openedAt        time.Time
	halfOpenInFlight int

	successes   int64
	failures    int64
	rejections  int64
	transitions int64
}

// New creates a breaker with the given config, starting Closed.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &Breaker{cfg: cfg, state: Closed}
}

// Allow reports whether a call may proceed, admitting it if so. Every
// admitted call (Allow returning true) must eventually be matched by exactly
// one Record call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if time.Since(b.openedAt) >= b.cfg.RecoveryTimeout {
			b.transitionLocked(HalfOpen)
			b.halfOpenInFlight = 1
			return true
		}
		b.rejections++
		return false
	case HalfOpen:
		if b.halfOpenInFlight < b.cfg.HalfOpenMaxCalls {
			b.halfOpenInFlight++
			return true
		}
		b.rejections++
		return false
	default:
		return false
	}
}

// Record reports the outcome of a call previously admitted by Allow. A nil
// err means success. If err is non-nil and classified as excluded by
// cfg.Exclude, it is ignored entirely: it does not count as a failure, does
// not advance consecutiveFail, and does not trip or recover the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	excluded := err != nil && b.cfg.Exclude != nil && b.cfg.Exclude(err)
	success := err == nil

	switch b.state {
	case HalfOpen:
		b.halfOpenInFlight--
		if b.halfOpenInFlight < 0 {
			b.halfOpenInFlight = 0
		}
		if excluded {
			return
		}
		if success {
			b.successes++
			b.consecutiveFail = 0
			b.transitionLocked(Closed)
		} else {
			b.failures++
			b.transitionLocked(Open)
			b.openedAt = time.Now()
		}
	case Closed:
		if excluded {
			return
		}
		if success {
			b.successes++
			b.consecutiveFail = 0
			return
		}
		b.failures++
		b.consecutiveFail++
		if b.consecutiveFail >= b.cfg.FailureThreshold {
			b.transitionLocked(Open)
			b.openedAt = time.Now()
		}
	case Open:
		// A call slipped through (e.g. a stale Allow); record it but the
		// state has already moved on without it.
		if excluded {
			return
		}
		if success {
			b.successes++
		} else {
			b.failures++
		}
	}
}

func (b *Breaker) transitionLocked(to State) {
	if b.state == to {
		return
	}
	b.state = to
	b.transitions++
}

// GetState returns the current state.
func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker back to Closed, clearing counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutiveFail = 0
	b.halfOpenInFlight = 0
}

// Execute runs fn if the breaker admits the call, classifying the result as
// a success/failure for Record, and returns neterr.ErrCircuitOpen without
// invoking fn if rejected.
func (b *Breaker) Execute(fn func() error) error {
	if !b.Allow() {
		return neterr.ErrCircuitOpen
	}
	err := fn()
	b.Record(err)
	return err
}
