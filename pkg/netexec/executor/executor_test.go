package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"netexec/pkg/netexec/event"
)

func newTestExecutor(t *testing.T, requestRate float64) *Executor {
	t.Helper()
	x, err := New(Config{
		QueueCapacity:    10,
		ConcurrencyLimit: 5,
		RequestRate:      requestRate,
		RequestPeriod:    time.Second,
		Workers:          2,
		EndpointKey:      "test-endpoint",
	})
	require.NoError(t, err)
	return x
}

func TestSubmitBeforeStartFails(t *testing.T) {
	x := newTestExecutor(t, 100)
	_, err := x.Submit(func(ctx context.Context) (int, map[string]string, any, error) {
		return 200, nil, "ok", nil
	}, event.Descriptor{}, nil)
	require.Error(t, err)
}

func TestHappyPathCompletion(t *testing.T) {
	x := newTestExecutor(t, 100)
	x.Start()
	defer x.Stop(true)

	ev, err := x.Submit(func(ctx context.Context) (int, map[string]string, any, error) {
		return 200, map[string]string{}, map[string]any{"result": "success"}, nil
	}, event.Descriptor{EndpointURL: "https://api.example.com/v1/completions", Method: "POST"}, nil)
	require.NoError(t, err)

	x.Join()
	require.Equal(t, event.StatusCompleted, ev.Status())
	require.Equal(t, 200, ev.Result().StatusCode)

	timing := ev.Timing()
	require.False(t, timing.CreatedAt.IsZero())
	require.False(t, timing.QueuedAt.IsZero())
	require.False(t, timing.ProcessingStartedAt.IsZero())
	require.False(t, timing.CallStartedAt.IsZero())
	require.False(t, timing.CompletedAt.IsZero())
}

func TestClosureErrorRecordedAsFailed(t *testing.T) {
	x := newTestExecutor(t, 100)
	x.Start()
	defer x.Stop(true)

	ev, err := x.Submit(func(ctx context.Context) (int, map[string]string, any, error) {
		return 0, nil, nil, errors.New("boom")
	}, event.Descriptor{}, nil)
	require.NoError(t, err)

	x.Join()
	require.Equal(t, event.StatusFailed, ev.Status())
}

func TestRateLimiterGatesThroughput(t *testing.T) {
	x, err := New(Config{
		QueueCapacity:    10,
		ConcurrencyLimit: 5,
		RequestRate:      2, // 2 per second, single worker serializes acquires
		RequestPeriod:    time.Second,
		Workers:          1,
		EndpointKey:      "test-endpoint",
	})
	require.NoError(t, err)
	x.Start()
	defer x.Stop(true)

	start := time.Now()
	for i := 0; i < 6; i++ {
		_, err := x.Submit(func(ctx context.Context) (int, map[string]string, any, error) {
			return 200, nil, nil, nil
		}, event.Descriptor{}, nil)
		require.NoError(t, err)
	}
	x.Join()
	require.GreaterOrEqual(t, time.Since(start), 1900*time.Millisecond)
}

func TestStartStopIdempotent(t *testing.T) {
	x := newTestExecutor(t, 100)
	x.Start()
	x.Start()
	x.Stop(true)
	x.Stop(true)
}

func TestTrySubmitBackpressure(t *testing.T) {
	x, err := New(Config{
		QueueCapacity:    2,
		ConcurrencyLimit: 1,
		RequestRate:      100,
		RequestPeriod:    time.Second,
		Workers:          1,
		EndpointKey:      "test-endpoint",
	})
	require.NoError(t, err)
	x.Start()
	defer x.Stop(true)

	slow := func(ctx context.Context) (int, map[string]string, any, error) {
		time.Sleep(50 * time.Millisecond)
		return 200, nil, nil, nil
	}

	_, ok1, err := x.TrySubmit(slow, event.Descriptor{}, nil, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok1)

	_, ok2, err := x.TrySubmit(slow, event.Descriptor{}, nil, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok2)

	_, ok3, err := x.TrySubmit(slow, event.Descriptor{}, nil, 10*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok3)

	x.Join()
}
