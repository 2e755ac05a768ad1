// Package capacity provides a counting-semaphore limiter that bounds the
// number of concurrent in-flight operations.
package capacity

import "context"

// Limiter is a counting semaphore expressing maximum concurrent operations.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a limiter admitting at most n concurrent holders.
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is available or ctx is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the pool.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
	}
}

// InUse reports the number of slots currently held.
func (l *Limiter) InUse() int {
	return len(l.slots)
}

// Capacity reports the configured concurrency limit.
func (l *Limiter) Capacity() int {
	return cap(l.slots)
}

// Guard acquires a slot and returns a release function, for scoped use:
//
//	release, err := limiter.Guard(ctx)
//	if err != nil { return err }
//	defer release()
func (l *Limiter) Guard(ctx context.Context) (func(), error) {
	if err := l.Acquire(ctx); err != nil {
		return func() {}, err
	}
	return l.Release, nil
}
