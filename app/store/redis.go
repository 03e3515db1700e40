package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type (
	RedisStore struct {
		client *redis.Client
	}

	RedisConfig struct {
		Port     int
		Host     string
		Password string
		DB       int
	}
)

var _ Backend = (*RedisStore)(nil)

func NewRedisStore(config RedisConfig) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}

	return v, errors.Wrapf(err, "redis get %q", key)
}

func (r *RedisStore) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return errors.Wrapf(r.client.Set(ctx, key, value, expiration).Err(), "redis set %q", key)
}

func (r *RedisStore) Del(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, key).Err(), "redis del %q", key)
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "redis ping")
}

func (r *RedisStore) Close() error { return r.client.Close() }
