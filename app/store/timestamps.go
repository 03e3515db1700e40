package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Timestamps persists the admitted request times (unix milliseconds) under a
// single key. Backend failures are logged and never reach the caller: a read
// failure looks like an empty history and a failed write is dropped.
type Timestamps struct {
	backend Backend
	key     string
	window  time.Duration
}

const (
	DefaultKey    = "requests"
	DefaultWindow = time.Hour
)

func NewTimestamps(backend Backend, key string, window time.Duration) *Timestamps {
	if key == "" {
		key = DefaultKey
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &Timestamps{backend: backend, key: key, window: window}
}

func (t *Timestamps) Window() time.Duration { return t.window }

func (t *Timestamps) Load(ctx context.Context) []int64 {
	v, err := t.backend.Get(ctx, t.key)
	if errors.Is(err, ErrNotFound) {
		return []int64{}
	}

	if err != nil {
		log.WithError(err).WithField("key", t.key).Error("failed to read stored requests")
		return []int64{}
	}

	var ts []int64
	if err := json.Unmarshal([]byte(v), &ts); err != nil {
		log.WithError(err).WithField("key", t.key).Error("failed to decode stored requests")
		return []int64{}
	}

	out := ts[:0]

	for _, s := range ts {
		if s >= 0 {
			out = append(out, s)
		}
	}

	return out
}

func (t *Timestamps) Save(ctx context.Context, ts []int64) {
	if ts == nil {
		ts = []int64{}
	}

	b, err := json.Marshal(ts)
	if err != nil {
		log.WithError(err).WithField("key", t.key).Error("failed to encode requests")
		return
	}

	// Entries older than the window are useless, so the key may expire with it.
	if err := t.backend.Set(ctx, t.key, string(b), t.window); err != nil {
		log.WithError(err).WithField("key", t.key).Error("failed to store requests")
	}
}

// Prune drops every entry at least one window older than now, writing the
// result back only when something was dropped.
func (t *Timestamps) Prune(ctx context.Context, now time.Time) []int64 {
	var (
		all    = t.Load(ctx)
		recent = make([]int64, 0, len(all))
		ms     = now.UnixMilli()
		window = t.window.Milliseconds()
	)

	for _, s := range all {
		if ms-s < window {
			recent = append(recent, s)
		}
	}

	if len(recent) != len(all) {
		t.Save(ctx, recent)
	}

	return recent
}

func (t *Timestamps) Ping(ctx context.Context) error {
	return t.backend.Ping(ctx)
}
