// Package ratelimit implements token-bucket rate limiting, including the
// header-driven adaptive variant and a per-endpoint registry.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Bucket is a token bucket that reports the wait required to earn a cost
// rather than sleeping internally; callers decide whether and how to wait.
type Bucket struct {
	mu sync.Mutex

	rate     float64 // tokens added per period
	period   time.Duration
	capacity float64

	tokens     float64
	lastRefill time.Time
}

// NewBucket creates a token bucket starting at full capacity. rate must be positive.
func NewBucket(rate float64, period time.Duration, capacity float64) (*Bucket, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("ratelimit: rate must be positive, got %v", rate)
	}
	if period <= 0 {
		period = time.Second
	}
	if capacity <= 0 {
		capacity = rate
	}
	return &Bucket{
		rate:       rate,
		period:     period,
		capacity:   capacity,
		tokens:     capacity,
		lastRefill: time.Now(),
	}, nil
}

// refillLocked must be called with mu held.
func (b *Bucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	refilled := elapsed.Seconds() * (b.rate / b.period.Seconds())
	b.tokens += refilled
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

// Acquire computes the wait (in seconds) required before cost tokens would be
// fully earned, deducts cost unconditionally (so the balance can go
// negative, tracking debt), and returns that wait without sleeping.
func (b *Bucket) Acquire(cost float64) time.Duration {
	if cost <= 0 {
		cost = 1.0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())

	shortfall := cost - b.tokens
	var wait time.Duration
	if shortfall > 0 {
		waitSeconds := shortfall / (b.rate / b.period.Seconds())
		wait = time.Duration(waitSeconds * float64(time.Second))
	}
	b.tokens -= cost
	return wait
}

// Execute calls Acquire(cost), sleeps for the returned wait if positive,
// then invokes fn. The sleep cannot be cancelled.
func (b *Bucket) Execute(cost float64, fn func() error) error {
	wait := b.Acquire(cost)
	if wait > 0 {
		time.Sleep(wait)
	}
	return fn()
}

// Tokens returns the current token balance (may be negative), refilling first.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked(time.Now())
	return b.tokens
}

// Capacity returns the configured bucket capacity.
func (b *Bucket) Capacity() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// Reconfigure rescales rate, period, and capacity. The current token balance
// is scaled proportionally to the capacity change to avoid a sudden credit
// or deficit; if resetTokens is true the bucket is refilled to the new
// capacity instead.
func (b *Bucket) Reconfigure(rate float64, period time.Duration, capacity float64, resetTokens bool) error {
	if rate <= 0 {
		return fmt.Errorf("ratelimit: rate must be positive, got %v", rate)
	}
	if period <= 0 {
		period = time.Second
	}
	if capacity <= 0 {
		capacity = rate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked(time.Now())

	if resetTokens {
		b.tokens = capacity
	} else if b.capacity > 0 {
		b.tokens = b.tokens * (capacity / b.capacity)
	}

	b.rate = rate
	b.period = period
	b.capacity = capacity
	return nil
}
