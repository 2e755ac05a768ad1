package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultRate     = 10.0
	defaultPeriod   = time.Second
	defaultCapacity = 10.0
)

// Registry maps an endpoint key to a dedicated bucket, creating one with
// defaults on first use.
type Registry struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
}

// NewRegistry creates an empty endpoint rate-limiter registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string]*Bucket)}
}

func (r *Registry) bucketLocked(key string) *Bucket {
	b, ok := r.buckets[key]
	if !ok {
		b, _ = NewBucket(defaultRate, defaultPeriod, defaultCapacity)
		r.buckets[key] = b
	}
	return b
}

// Execute acquires cost tokens from the endpoint's bucket (creating it with
// defaults if new), sleeps for the returned wait if positive, then calls fn.
func (r *Registry) Execute(key string, cost float64, fn func() error) error {
	r.mu.Lock()
	b := r.bucketLocked(key)
	r.mu.Unlock()
	return b.Execute(cost, fn)
}

// Acquire acquires cost tokens from the endpoint's bucket without invoking
// anything, returning the wait the caller should honor.
func (r *Registry) Acquire(key string, cost float64) time.Duration {
	r.mu.Lock()
	b := r.bucketLocked(key)
	r.mu.Unlock()
	return b.Acquire(cost)
}

// UpdateRateLimit rescales the named endpoint's bucket parameters. If
// resetTokens is true the bucket refills to the new capacity; otherwise its
// current balance is scaled proportionally to the capacity change.
func (r *Registry) UpdateRateLimit(key string, rate float64, period time.Duration, capacity float64, resetTokens bool) error {
	r.mu.Lock()
	b := r.bucketLocked(key)
	r.mu.Unlock()
	return b.Reconfigure(rate, period, capacity, resetTokens)
}

// Bucket returns the endpoint's bucket, creating it with defaults if new.
func (r *Registry) Bucket(key string) *Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bucketLocked(key)
}
