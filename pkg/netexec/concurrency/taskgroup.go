// Package concurrency provides thin structured-concurrency wrappers used by
// the executor to own and cancel its worker tasks as a scope.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TaskGroup owns a set of goroutines sharing a cancellable context: cancelling
// the scope cancels every task spawned from it.
type TaskGroup struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTaskGroup creates a task group deriving its context from parent.
func NewTaskGroup(parent context.Context) *TaskGroup {
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	return &TaskGroup{group: group, ctx: gctx, cancel: cancel}
}

// Context returns the group's context, cancelled when the group is
// cancelled or any task returns a non-nil error.
func (g *TaskGroup) Context() context.Context {
	return g.ctx
}

// Go spawns fn as a task owned by the group.
func (g *TaskGroup) Go(fn func(ctx context.Context) error) {
	g.group.Go(func() error {
		return fn(g.ctx)
	})
}

// Cancel cancels every task owned by the group without waiting for them to exit.
func (g *TaskGroup) Cancel() {
	g.cancel()
}

// Wait blocks until every spawned task has returned, then returns the first
// non-nil error, if any.
func (g *TaskGroup) Wait() error {
	defer g.cancel()
	return g.group.Wait()
}
