// Package executor runs submitted closures through a bounded work queue,
// a worker pool, a capacity limiter, and two rate limiters, in the
// invariant acquire order capacity -> request-rate -> token-rate -> dispatch.
package executor

import (
	"context"
	"sync"
	"time"

	"netexec/pkg/logx"
	"netexec/pkg/neterr"
	"netexec/pkg/netexec/capacity"
	"netexec/pkg/netexec/concurrency"
	"netexec/pkg/netexec/event"
	"netexec/pkg/netexec/metrics"
	"netexec/pkg/netexec/queue"
	"netexec/pkg/netexec/ratelimit"
)

// Closure is the unit of work a worker invokes. It returns the raw response
// body on success, or an error the worker records on the event.
type Closure func(ctx context.Context) (statusCode int, headers map[string]string, body any, err error)

// task pairs a submitted closure with the event tracking its lifecycle.
type task struct {
	closure Closure
	ev      *event.Event
}

// Config parameterizes executor construction.
type Config struct {
	QueueCapacity    int
	ConcurrencyLimit int
	RequestRate      float64
	RequestPeriod    time.Duration
	RequestCapacity  float64 // 0 defaults to RequestRate
	TokenRate        float64 // 0 disables the token-rate limiter
	TokenPeriod      time.Duration
	TokenCapacity    float64
	Workers          int
	Recorder         metrics.Recorder
	Logger           *logx.Logger
	EndpointKey      string // used for metrics/logging labels
}

// Executor owns the full dispatch pipeline for one endpoint's submitted work.
type Executor struct {
	cfg Config

	queue      *queue.Queue
	capacity   *capacity.Limiter
	requestLim *ratelimit.Bucket
	tokenLim   *ratelimit.Bucket

	mu      sync.Mutex
	running bool
	group   *concurrency.TaskGroup
}

// New constructs an executor. The queue and limiters are created but
// inactive until Start is called.
func New(cfg Config) (*Executor, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop()
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.NewLogger("executor")
	}

	requestLim, err := ratelimit.NewBucket(cfg.RequestRate, cfg.RequestPeriod, cfg.RequestCapacity)
	if err != nil {
		return nil, err
	}

	var tokenLim *ratelimit.Bucket
	if cfg.TokenRate > 0 {
		tokenLim, err = ratelimit.NewBucket(cfg.TokenRate, cfg.TokenPeriod, cfg.TokenCapacity)
		if err != nil {
			return nil, err
		}
	}

	return &Executor{
		cfg:        cfg,
		queue:      queue.New(cfg.QueueCapacity),
		capacity:   capacity.NewLimiter(cfg.ConcurrencyLimit),
		requestLim: requestLim,
		tokenLim:   tokenLim,
	}, nil
}

// Start is idempotent; it transitions the queue to Processing and spawns
// Workers worker goroutines each running the per-task pipeline.
func (x *Executor) Start() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.running {
		return
	}
	x.running = true
	x.group = concurrency.NewTaskGroup(context.Background())
	x.queue.StartWorkers(x.cfg.Workers, x.handle)
}

// Stop is idempotent. If graceful, it waits (no timeout) for the queue to
// drain before stopping workers; otherwise it cancels workers within a
// short (~100ms) grace period.
func (x *Executor) Stop(graceful bool) {
	x.mu.Lock()
	if !x.running {
		x.mu.Unlock()
		return
	}
	x.running = false
	group := x.group
	x.mu.Unlock()

	if graceful {
		x.queue.Stop(true, 0)
	} else {
		// Cancel in-flight acquires, sleeps and closures first, so the
		// queue's wait for its workers does not outlast them.
		if group != nil {
			group.Cancel()
		}
		x.queue.Stop(false, 100*time.Millisecond)
	}
	if group != nil {
		group.Cancel()
	}
}

// Submit builds a new event in Pending, wraps it with closure in a task
// record, enqueues it (transitioning the event to Queued on success), and
// returns the event. It refuses with neterr.ErrExecutorNotRunning if the
// executor has not been started.
func (x *Executor) Submit(closure Closure, descriptor event.Descriptor, metadata map[string]any) (*event.Event, error) {
	x.mu.Lock()
	running := x.running
	x.mu.Unlock()
	if !running {
		return nil, neterr.ErrExecutorNotRunning
	}

	ev := event.New(descriptor, metadata)
	t := task{closure: closure, ev: ev}

	if !x.queue.Put(t, -1) {
		return nil, neterr.ErrQueueBackpressure
	}
	ev.UpdateStatus(event.StatusQueued)
	return ev, nil
}

// TrySubmit behaves like Submit but uses a bounded put timeout instead of
// blocking indefinitely, surfacing backpressure as a boolean.
func (x *Executor) TrySubmit(closure Closure, descriptor event.Descriptor, metadata map[string]any, timeout time.Duration) (*event.Event, bool, error) {
	x.mu.Lock()
	running := x.running
	x.mu.Unlock()
	if !running {
		return nil, false, neterr.ErrExecutorNotRunning
	}

	ev := event.New(descriptor, metadata)
	t := task{closure: closure, ev: ev}

	if !x.queue.Put(t, timeout) {
		x.cfg.Recorder.IncBackpressure(x.cfg.EndpointKey)
		return ev, false, nil
	}
	ev.UpdateStatus(event.StatusQueued)
	return ev, true, nil
}

// handle runs the fixed-order worker pipeline for one task.
func (x *Executor) handle(item any) error {
	t, ok := item.(task)
	if !ok {
		return nil
	}
	ev := t.ev
	start := time.Now()

	ev.UpdateStatus(event.StatusProcessing)

	ctx := context.Background()
	if x.group != nil {
		ctx = x.group.Context()
	}

	release, err := x.capacity.Guard(ctx)
	if err != nil {
		ev.Cancel("capacity acquire interrupted: " + err.Error())
		return err
	}
	defer release()

	if wait := x.requestLim.Acquire(1); wait > 0 {
		x.cfg.Logger.Debug("request-rate limiter wait %s for endpoint %s", wait, x.cfg.EndpointKey)
		x.cfg.Recorder.ObserveQueueWait(x.cfg.EndpointKey, wait)
		sleepOrDone(ctx, wait)
	}

	descriptor := ev.Descriptor()
	if descriptor.TokensNeeded > 0 && x.tokenLim != nil {
		if wait := x.tokenLim.Acquire(float64(descriptor.TokensNeeded)); wait > 0 {
			x.cfg.Logger.Debug("token-rate limiter wait %s for endpoint %s", wait, x.cfg.EndpointKey)
			x.cfg.Recorder.ObserveQueueWait(x.cfg.EndpointKey, wait)
			sleepOrDone(ctx, wait)
		}
	}

	ev.UpdateStatus(event.StatusCalling)

	statusCode, headers, body, callErr := t.closure(ctx)
	duration := time.Since(start)

	if callErr != nil {
		ev.SetError(neterr.TypeOf(callErr).String(), callErr.Error(), "")
		x.cfg.Recorder.ObserveRequest(x.cfg.EndpointKey, "error", descriptor.TokensNeeded, false, duration)
		return callErr
	}

	ev.SetResult(statusCode, headers, body)
	x.cfg.Recorder.ObserveRequest(x.cfg.EndpointKey, "success", descriptor.TokensNeeded, true, duration)
	return nil
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Join blocks until every submitted task has reached a terminal outcome.
func (x *Executor) Join() {
	x.queue.Join()
}

// QueueMetrics exposes the underlying queue's counters.
func (x *Executor) QueueMetrics() queue.Metrics {
	return x.queue.Metrics()
}
