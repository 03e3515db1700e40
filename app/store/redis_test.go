package store

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("failed to parse port: %v", err)
	}

	r := NewRedisStore(RedisConfig{Host: mr.Host(), Port: port})
	t.Cleanup(func() { _ = r.Close() })

	return r, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if _, err := r.Get(ctx, "requests"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := r.Set(ctx, "requests", "[1,2]", time.Hour); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	v, err := r.Get(ctx, "requests")
	if err != nil || v != "[1,2]" {
		t.Fatalf("unexpected value %q err=%v", v, err)
	}
	if ttl := mr.TTL("requests"); ttl != time.Hour {
		t.Fatalf("expected key to expire with the window, got %s", ttl)
	}

	if err := r.Del(ctx, "requests"); err != nil {
		t.Fatalf("unexpected del error: %v", err)
	}
	if _, err := r.Get(ctx, "requests"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after del, got %v", err)
	}
}

func TestRedisStore_PingAndOutage(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}

	mr.Close()

	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping error with redis down")
	}
	if _, err := r.Get(ctx, "requests"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestTimestamps_OverRedis(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)
	ts := NewTimestamps(r, "", time.Hour)

	now := time.UnixMilli(10_000_000)
	ts.Save(ctx, []int64{now.Add(-2 * time.Hour).UnixMilli(), now.Add(-time.Minute).UnixMilli()})

	if got := ts.Prune(ctx, now); len(got) != 1 {
		t.Fatalf("expected one entry inside the window, got %v", got)
	}
	if got := ts.Load(ctx); len(got) != 1 {
		t.Fatalf("expected pruned history persisted in redis, got %v", got)
	}
}
