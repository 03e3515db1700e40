package ratelimit

import (
	"context"
	"time"
)

type (
	Level uint8

	// Status is what the rate-limit display shows at a given moment.
	Status struct {
		Remaining       int
		ResetInMinutes  int
		CooldownSeconds int
		// CooldownUntil is when the current cooldown ends; zero if none.
		CooldownUntil time.Time
		Level         Level
	}
)

const (
	Normal Level = iota
	Warning
	Danger
)

const (
	warningRemaining = 5
	dangerRemaining  = 2
)

var levelStr = []string{"", "warning", "danger"}

func (l Level) String() string {
	if int(l) < len(levelStr) {
		return levelStr[l]
	}

	return ""
}

// Status never records an admission. Calling it twice with the same now and
// no admission in between yields the same value.
func (l *Limiter) Status(ctx context.Context, now time.Time) Status {
	l.mu.Lock()
	recent := l.counter.Prune(ctx, now)
	l.mu.Unlock()

	s := Status{
		Remaining:      int(l.config.Limit) - len(recent),
		ResetInMinutes: MinutesToNextHour(now),
	}

	if s.Remaining < 0 {
		s.Remaining = 0
	}

	switch {
	case s.Remaining <= dangerRemaining:
		s.Level = Danger
	case s.Remaining <= warningRemaining:
		s.Level = Warning
	}

	if len(recent) > 0 {
		until := time.UnixMilli(newest(recent)).Add(l.config.MinInterval)
		if left := until.Sub(now); left > 0 {
			s.CooldownUntil = until
			s.CooldownSeconds = CeilSeconds(left)
		}
	}

	return s
}

// MinutesToNextHour rounds up the time left until the top of the next clock
// hour in now's location.
func MinutesToNextHour(now time.Time) int {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())

	return ceilDiv(next.Sub(now), time.Minute)
}

func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	return ceilDiv(d, time.Second)
}

func ceilDiv(d, unit time.Duration) int {
	return int((d + unit - 1) / unit)
}
