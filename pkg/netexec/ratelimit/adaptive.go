package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// AdaptiveBucket is a Bucket that can re-parameterize its rate from
// response headers, mirroring the header conventions of rate-limited HTTP
// APIs (X-RateLimit-Remaining / X-RateLimit-Reset / Retry-After).
type AdaptiveBucket struct {
	*Bucket

	minRate      float64
	safetyFactor float64
	period       time.Duration
}

// AdaptiveOption configures an AdaptiveBucket at construction.
type AdaptiveOption func(*AdaptiveBucket)

// WithMinRate sets the floor below which the adaptive rate never drops.
func WithMinRate(minRate float64) AdaptiveOption {
	return func(a *AdaptiveBucket) { a.minRate = minRate }
}

// WithSafetyFactor scales the computed rate down (or up) from the raw header math.
func WithSafetyFactor(factor float64) AdaptiveOption {
	return func(a *AdaptiveBucket) { a.safetyFactor = factor }
}

// NewAdaptiveBucket creates an adaptive token bucket.
func NewAdaptiveBucket(rate float64, period time.Duration, capacity float64, opts ...AdaptiveOption) (*AdaptiveBucket, error) {
	base, err := NewBucket(rate, period, capacity)
	if err != nil {
		return nil, err
	}
	a := &AdaptiveBucket{
		Bucket:       base,
		minRate:      0.01,
		safetyFactor: 0.9,
		period:       period,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// UpdateFromHeaders re-parameterizes the bucket's rate from a response's
// rate-limit headers. It recognizes the X-RateLimit-Remaining/Reset pair
// first, falling back to Retry-After, and is a no-op if neither is present.
func (a *AdaptiveBucket) UpdateFromHeaders(headers http.Header) {
	if remaining, resetSeconds, ok := parseRemainingReset(headers); ok {
		newRate := (remaining / resetSeconds) * a.safetyFactor
		if newRate < a.minRate {
			newRate = a.minRate
		}
		_ = a.Reconfigure(newRate, a.period, a.Capacity(), false)
		return
	}

	if retryAfter, ok := parseRetryAfter(headers); ok && retryAfter > 0 {
		newRate := (0 / retryAfter) * a.safetyFactor
		if newRate < a.minRate {
			newRate = a.minRate
		}
		_ = a.Reconfigure(newRate, a.period, a.Capacity(), false)
	}
}

func parseRemainingReset(headers http.Header) (remaining float64, resetSeconds float64, ok bool) {
	remainingStr := headers.Get("X-RateLimit-Remaining")
	resetStr := headers.Get("X-RateLimit-Reset")
	if remainingStr == "" || resetStr == "" {
		return 0, 0, false
	}
	r, err := strconv.ParseFloat(remainingStr, 64)
	if err != nil {
		return 0, 0, false
	}
	reset, err := strconv.ParseFloat(resetStr, 64)
	if err != nil || reset <= 0 {
		return 0, 0, false
	}
	return r, reset, true
}

func parseRetryAfter(headers http.Header) (float64, bool) {
	v := headers.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}
