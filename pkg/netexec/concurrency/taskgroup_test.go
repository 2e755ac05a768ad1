package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCancelStopsAllTasks(t *testing.T) {
	g := NewTaskGroup(context.Background())
	stopped := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		g.Go(func(ctx context.Context) error {
			<-ctx.Done()
			stopped <- struct{}{}
			return nil
		})
	}
	g.Cancel()
	for i := 0; i < 3; i++ {
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("task did not observe cancellation")
		}
	}
	require.NoError(t, g.Wait())
}

func TestWaitReturnsFirstError(t *testing.T) {
	g := NewTaskGroup(context.Background())
	g.Go(func(ctx context.Context) error { return errors.New("boom") })
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	err := g.Wait()
	require.Error(t, err)
}
