package ticker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_RunsUntilStopped(t *testing.T) {
	var calls int32

	task := Every(context.Background(), 2*time.Millisecond, func(time.Time) bool {
		atomic.AddInt32(&calls, 1)
		return true
	})

	time.Sleep(20 * time.Millisecond)
	task.Stop()

	n := atomic.LoadInt32(&calls)
	if n == 0 {
		t.Fatalf("expected task to run at least once")
	}

	time.Sleep(10 * time.Millisecond)
	if atomic.LoadInt32(&calls) != n {
		t.Fatalf("expected no calls after Stop")
	}

	task.Stop()
}

func TestEvery_StopsWhenFnReturnsFalse(t *testing.T) {
	var calls int32

	task := Every(context.Background(), time.Millisecond, func(time.Time) bool {
		return atomic.AddInt32(&calls, 1) < 3
	})

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected task to stop itself")
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestEvery_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Millisecond, func(time.Time) bool { return true })

	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected task to stop with its context")
	}
}

func TestCountdown_TerminatesAtZero(t *testing.T) {
	var (
		mu    sync.Mutex
		clock = time.Unix(0, 0)
		seen  []time.Duration
	)

	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	task := Countdown(context.Background(), time.Unix(3, 0), time.Millisecond, now, func(left time.Duration) {
		mu.Lock()
		seen = append(seen, left)
		mu.Unlock()
	})

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected countdown to stop itself")
	}

	mu.Lock()
	defer mu.Unlock()

	want := []time.Duration{2 * time.Second, time.Second, 0}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}
