package ratelimit

import (
	"context"
	"errors"
	"time"
)

type (
	// Counter is the persistent history of admitted request times in unix
	// milliseconds. Prune is the only read path the limiter uses.
	Counter interface {
		Prune(context.Context, time.Time) []int64
		Save(context.Context, []int64)
	}

	State uint8

	Config struct {
		// Limit is the number of admissions allowed inside Window.
		Limit uint64
		// Window is the trailing interval admissions are counted over.
		Window time.Duration
		// MinInterval is the cooldown between two admissions.
		MinInterval time.Duration
	}

	Result struct {
		State         State
		TotalRequests uint64
		// RetryAt is the earliest time a denied request could be admitted.
		// Zero when the request was admitted.
		RetryAt time.Time
	}
)

const (
	Deny State = iota
	Allow
)

const (
	DefaultLimit       = 10
	DefaultWindow      = time.Hour
	DefaultMinInterval = time.Minute
)

var (
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidLimit       = errors.New("invalid rate limit")
	ErrInvalidWindow      = errors.New("invalid rate limit window")
	ErrInvalidMinInterval = errors.New("invalid rate limit interval")
)

var stateStr = []string{"Deny", "Allow"}

func (s State) String() string {
	if int(s) < len(stateStr) {
		return stateStr[s]
	}

	return "Unknown"
}

func DefaultConfig() Config {
	return Config{
		Limit:       DefaultLimit,
		Window:      DefaultWindow,
		MinInterval: DefaultMinInterval,
	}
}

func (c *Config) validate() error {
	if c.Limit == 0 {
		return ErrInvalidLimit
	}

	if c.Window <= 0 {
		return ErrInvalidWindow
	}

	if c.MinInterval < 0 {
		return ErrInvalidMinInterval
	}

	return nil
}
