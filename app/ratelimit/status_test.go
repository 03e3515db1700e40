package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestStatus_Fresh(t *testing.T) {
	l, _ := newTestLimiter(t)
	now := time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)

	s := l.Status(context.Background(), now)
	if s.Remaining != DefaultLimit {
		t.Fatalf("expected %d remaining, got %d", DefaultLimit, s.Remaining)
	}
	if s.ResetInMinutes != 45 {
		t.Fatalf("expected 45 minutes to reset, got %d", s.ResetInMinutes)
	}
	if s.CooldownSeconds != 0 || !s.CooldownUntil.IsZero() {
		t.Fatalf("expected no cooldown, got %+v", s)
	}
	if s.Level != Normal {
		t.Fatalf("expected normal level, got %q", s.Level)
	}
}

func TestStatus_CooldownAndLevel(t *testing.T) {
	l, ts := newTestLimiter(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	var prior []int64
	for i := 8; i >= 1; i-- {
		prior = append(prior, now.Add(-time.Duration(i)*time.Minute).UnixMilli())
	}
	prior[len(prior)-1] = now.Add(-20*time.Second - 500*time.Millisecond).UnixMilli()
	ts.Save(ctx, prior)

	s := l.Status(ctx, now)
	if s.Remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", s.Remaining)
	}
	if s.Level != Danger {
		t.Fatalf("expected danger level, got %q", s.Level)
	}
	if s.CooldownSeconds != 40 {
		t.Fatalf("expected 40 seconds of cooldown, got %d", s.CooldownSeconds)
	}
}

func TestStatus_Idempotent(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 1, time.UTC)

	l.TryAdmit(ctx, now.Add(-10*time.Second))

	a := l.Status(ctx, now)
	b := l.Status(ctx, now)
	if a != b {
		t.Fatalf("expected identical status, got %+v and %+v", a, b)
	}
	if a.Remaining != DefaultLimit-1 {
		t.Fatalf("status must not record admissions, remaining=%d", a.Remaining)
	}
}

func TestMinutesToNextHour(t *testing.T) {
	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 60},
		{time.Date(2024, 1, 1, 9, 59, 1, 0, time.UTC), 1},
		{time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC), 30},
	}

	for _, c := range cases {
		if got := MinutesToNextHour(c.now); got != c.want {
			t.Fatalf("MinutesToNextHour(%s) = %d, want %d", c.now, got, c.want)
		}
	}
}

func TestWriteStatusHeaders(t *testing.T) {
	h := http.Header{}
	WriteStatusHeaders(h, Status{Remaining: 7, ResetInMinutes: 12})

	if h.Get(rateLimitingRemaining) != "7" || h.Get(rateLimitingResetMinutes) != "12" {
		t.Fatalf("unexpected headers %v", h)
	}
	if h.Get(rateLimitingRetryAt) != "" {
		t.Fatalf("expected no retry header without cooldown")
	}
}
