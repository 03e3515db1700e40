package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingBackend struct {
	sets int
}

var errBackend = errors.New("backend down")

func (f *failingBackend) Get(context.Context, string) (string, error) { return "", errBackend }

func (f *failingBackend) Set(context.Context, string, string, time.Duration) error {
	f.sets++
	return errBackend
}

func (f *failingBackend) Del(context.Context, string) error { return errBackend }
func (f *failingBackend) Ping(context.Context) error        { return errBackend }

func TestTimestamps_LoadEmptyWhenMissing(t *testing.T) {
	ts := NewTimestamps(NewMemoryStore(), "", 0)

	got := ts.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTimestamps_LoadEmptyOnGarbage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.Set(ctx, DefaultKey, "{not json", 0)

	if got := NewTimestamps(m, "", 0).Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty history on decode failure, got %v", got)
	}
}

func TestTimestamps_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	ts := NewTimestamps(m, "", 0)

	ts.Save(ctx, []int64{1, 2, 3})

	raw, err := m.Get(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "[1,2,3]" {
		t.Fatalf("expected json array of ints, got %q", raw)
	}

	got := ts.Load(ctx)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("unexpected load result %v", got)
	}
}

func TestTimestamps_FailingBackendIsSwallowed(t *testing.T) {
	ctx := context.Background()
	b := &failingBackend{}
	ts := NewTimestamps(b, "", 0)

	if got := ts.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}

	ts.Save(ctx, []int64{1})
	if b.sets != 1 {
		t.Fatalf("expected one write attempt, got %d", b.sets)
	}

	if got := ts.Prune(ctx, time.Now()); len(got) != 0 {
		t.Fatalf("expected empty prune result, got %v", got)
	}
}

func TestTimestamps_PruneDropsOldAndPersists(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	ts := NewTimestamps(m, "", time.Hour)

	now := time.UnixMilli(10_000_000)
	old := now.Add(-time.Hour).UnixMilli()
	edge := now.Add(-time.Hour + time.Millisecond).UnixMilli()
	fresh := now.Add(-time.Minute).UnixMilli()

	ts.Save(ctx, []int64{old, edge, fresh})

	got := ts.Prune(ctx, now)
	if len(got) != 2 || got[0] != edge || got[1] != fresh {
		t.Fatalf("unexpected prune result %v", got)
	}

	if stored := ts.Load(ctx); len(stored) != 2 {
		t.Fatalf("expected pruned history to be persisted, got %v", stored)
	}
}

func TestTimestamps_PruneWithoutChangeDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(10_000_000)

	c := &countingBackend{MemoryStore: NewMemoryStore()}
	ts := NewTimestamps(c, "", time.Hour)
	ts.Save(ctx, []int64{now.UnixMilli() - 1000})
	c.sets = 0

	ts.Prune(ctx, now)
	if c.sets != 0 {
		t.Fatalf("expected no write when nothing was pruned, got %d", c.sets)
	}
}

type countingBackend struct {
	*MemoryStore
	sets int
}

func (c *countingBackend) Set(ctx context.Context, k, v string, d time.Duration) error {
	c.sets++
	return c.MemoryStore.Set(ctx, k, v, d)
}
