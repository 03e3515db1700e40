package store

import (
	"context"
	"time"
)

type Setter interface {
	Set(context.Context, string, string, time.Duration) error
	Del(context.Context, string) error
}

// Backend is a key-value area the counter store can live in.
type Backend interface {
	Getter
	Setter
	Ping(context.Context) error
}
