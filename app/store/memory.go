package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var ErrNotFound = errors.New("not found")

var _ Backend = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (r *MemoryStore) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.data[key]; ok {
		return v, nil
	}

	return "", ErrNotFound
}

func (r *MemoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = value

	return nil
}

func (r *MemoryStore) Del(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, key)

	return nil
}

func (r *MemoryStore) Ping(context.Context) error { return nil }
