// Package retry implements exponential-backoff-with-jitter retry around an
// arbitrary function, classifying which errors are retryable.
package retry

import (
	"math/rand"
	"time"
)

// Classifier decides whether an error should be retried. A nil Classifier
// retries every non-nil error.
type Classifier func(err error) bool

// Config parameterizes a retry policy.
type Config struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// JitterFactor controls a uniform multiplicative jitter in
	// [1-JitterFactor, 1+JitterFactor] applied to each computed delay.
	JitterFactor float64
	Classify     Classifier
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 10 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
	if c.Classify == nil {
		c.Classify = func(err error) bool { return err != nil }
	}
	return c
}

// Delay computes the backoff delay before attempt (1-indexed: the delay
// before the second attempt is Delay(1)), including jitter.
func (c Config) Delay(attempt int) time.Duration {
	c = c.withDefaults()
	d := float64(c.BaseDelay) * pow(c.BackoffFactor, float64(attempt-1))
	if d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	if c.JitterFactor > 0 {
		lo := 1 - c.JitterFactor
		hi := 1 + c.JitterFactor
		d *= lo + rand.Float64()*(hi-lo)
	}
	return time.Duration(d)
}

func pow(base, exp float64) float64 {
	result := 1.0
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	return result
}

// Do invokes fn, retrying on classified-retryable errors up to
// cfg.MaxRetries additional times (so at most 1+MaxRetries total attempts),
// sleeping the backoff delay between attempts. It returns the last error if
// every attempt fails, or nil as soon as one succeeds.
func Do(cfg Config, fn func() error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt > cfg.MaxRetries || !cfg.Classify(lastErr) {
			return lastErr
		}
		time.Sleep(cfg.Delay(attempt))
	}
	return lastErr
}
