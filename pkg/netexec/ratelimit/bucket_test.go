package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewBucketRejectsNonPositiveRate(t *testing.T) {
	_, err := NewBucket(0, time.Second, 10)
	require.Error(t, err)
}

func TestAcquireNoWaitWhenFull(t *testing.T) {
	b, err := NewBucket(2, time.Second, 2)
	require.NoError(t, err)

	wait := b.Acquire(1)
	require.Zero(t, wait)
}

func TestAcquireReturnsWaitOnShortfall(t *testing.T) {
	b, err := NewBucket(1, time.Second, 1)
	require.NoError(t, err)

	b.Acquire(1) // drains the bucket to zero
	wait := b.Acquire(1)
	require.Greater(t, wait, time.Duration(0))
	require.LessOrEqual(t, wait, 1100*time.Millisecond)
}

func TestAcquireAllowsDebtForCostOverCapacity(t *testing.T) {
	b, err := NewBucket(1, time.Second, 1)
	require.NoError(t, err)

	wait := b.Acquire(5)
	require.Greater(t, wait, 3*time.Second)
	require.LessOrEqual(t, wait, 5*time.Second)
}

func TestReconfigureScalesTokensProportionally(t *testing.T) {
	b, err := NewBucket(10, time.Second, 10)
	require.NoError(t, err)

	require.NoError(t, b.Reconfigure(10, time.Second, 5, false))
	require.InDelta(t, 5.0, b.Tokens(), 0.01)
}

func TestReconfigureResetRefillsToCapacity(t *testing.T) {
	b, err := NewBucket(10, time.Second, 10)
	require.NoError(t, err)

	b.Acquire(8)
	require.NoError(t, b.Reconfigure(10, time.Second, 10, true))
	require.InDelta(t, 10.0, b.Tokens(), 0.01)
}

func TestAdaptiveUpdateFromRemainingResetHeaders(t *testing.T) {
	a, err := NewAdaptiveBucket(10, time.Second, 10, WithMinRate(0.5), WithSafetyFactor(1.0))
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("X-RateLimit-Remaining", "5")
	headers.Set("X-RateLimit-Reset", "10")
	a.UpdateFromHeaders(headers)

	require.InDelta(t, 0.5, a.rate, 0.001)
}

func TestAdaptiveUpdateFromRetryAfterClampsToFloor(t *testing.T) {
	a, err := NewAdaptiveBucket(10, time.Second, 10, WithMinRate(0.2))
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("Retry-After", "30")
	a.UpdateFromHeaders(headers)

	require.InDelta(t, 0.2, a.rate, 0.001)
}

func TestAdaptiveUpdateFromHeadersNoOpWhenAbsent(t *testing.T) {
	a, err := NewAdaptiveBucket(10, time.Second, 10)
	require.NoError(t, err)

	a.UpdateFromHeaders(http.Header{})
	require.InDelta(t, 10.0, a.rate, 0.001)
}

func TestRegistryCreatesDefaultBucketOnFirstUse(t *testing.T) {
	r := NewRegistry()
	wait := r.Acquire("endpoint-a", 1)
	require.Zero(t, wait)
}

func TestRegistryExecuteRunsFn(t *testing.T) {
	r := NewRegistry()
	called := false
	err := r.Execute("endpoint-b", 1, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestRateLimiterGatingTiming(t *testing.T) {
	b, err := NewBucket(2, time.Second, 2)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 6; i++ {
		wait := b.Acquire(1)
		if wait > 0 {
			time.Sleep(wait)
		}
	}
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 1900*time.Millisecond)
}
