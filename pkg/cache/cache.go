// Package cache provides byte-oriented caches with TTL: an in-memory LRU, a
// Redis-backed store, and a layered combination of both.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// BytesCache stores raw bytes with a TTL. A miss is reported through the ok
// flag, not an error; errors are reserved for backend failures.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
