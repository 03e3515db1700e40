// Package ticker runs repeating tasks with explicit cancel handles.
package ticker

import (
	"context"
	"sync"
	"time"
)

// Task is a handle to a running repeating task.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every calls fn on each tick until ctx is done, the task is stopped, or fn
// returns false.
func Every(ctx context.Context, interval time.Duration, fn func(time.Time) bool) *Task {
	ctx, cancel := context.WithCancel(ctx)

	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tk.C:
				if !fn(now) {
					return
				}
			}
		}
	}()

	return t
}

// Countdown reports the time left until deadline on every tick and stops
// itself once nothing is left, after a final report of zero.
func Countdown(
	ctx context.Context,
	deadline time.Time,
	interval time.Duration,
	now func() time.Time,
	fn func(left time.Duration),
) *Task {
	return Every(ctx, interval, func(time.Time) bool {
		left := deadline.Sub(now())
		if left <= 0 {
			fn(0)
			return false
		}

		fn(left)

		return true
	})
}

// Stop cancels the task and waits for it to exit. Safe to call repeatedly.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

func (t *Task) Done() <-chan struct{} { return t.done }
