package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter admits at most Config.Limit requests per trailing Config.Window and
// never two within Config.MinInterval of each other. It is advisory: the
// history lives in whatever Counter it was given.
type Limiter struct {
	mu      sync.Mutex
	counter Counter
	config  Config
}

func New(counter Counter, config Config) (*Limiter, error) {
	if counter == nil {
		return nil, fmt.Errorf("counter is required")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("rate limiter configuration invalid: %w", err)
	}

	return &Limiter{counter: counter, config: config}, nil
}

func (l *Limiter) Config() Config { return l.config }

// TryAdmit decides whether a request made at now may proceed. The timestamp
// is recorded only when the request is admitted.
func (l *Limiter) TryAdmit(ctx context.Context, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		recent = l.counter.Prune(ctx, now)
		total  = uint64(len(recent))
		res    = Result{State: Deny, TotalRequests: total}
	)

	if total >= l.config.Limit {
		res.RetryAt = time.UnixMilli(oldest(recent)).Add(l.config.Window)
		return res
	}

	if total > 0 {
		last := newest(recent)
		if now.UnixMilli()-last < l.config.MinInterval.Milliseconds() {
			res.RetryAt = time.UnixMilli(last).Add(l.config.MinInterval)
			return res
		}
	}

	l.counter.Save(ctx, append(recent, now.UnixMilli()))

	res.State = Allow
	res.TotalRequests = total + 1

	return res
}

func newest(ts []int64) int64 {
	m := ts[0]

	for _, t := range ts[1:] {
		if t > m {
			m = t
		}
	}

	return m
}

func oldest(ts []int64) int64 {
	m := ts[0]

	for _, t := range ts[1:] {
		if t < m {
			m = t
		}
	}

	return m
}
