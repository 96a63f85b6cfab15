package cache

import (
	"context"
	"time"
)

// LayeredCache reads through an in-memory L1 before an optional slower L2
// (Redis). Writes go to both layers; an L2 failure does not fail the write.
type LayeredCache struct {
	l1 BytesCache
	l2 BytesCache
}

// NewLayeredCache builds a layered cache. l2 may be nil.
func NewLayeredCache(l1, l2 BytesCache) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2}
}

func (c *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, err := c.l1.GetBytes(ctx, key); err == nil && ok {
		return b, true, nil
	}
	if c.l2 == nil {
		return nil, false, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	// promote to L1; TTL is managed by L2, use a short local one
	_ = c.l1.SetBytes(ctx, key, b, time.Minute)
	return b, true, nil
}

func (c *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	if c.l2 != nil {
		_ = c.l2.SetBytes(ctx, key, value, ttl)
	}
	return nil
}

func (c *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	err := c.l1.Delete(ctx, keys...)
	if c.l2 != nil {
		if err2 := c.l2.Delete(ctx, keys...); err == nil {
			err = err2
		}
	}
	return err
}

func (c *LayeredCache) Close() error {
	err := c.l1.Close()
	if c.l2 != nil {
		if err2 := c.l2.Close(); err == nil {
			err = err2
		}
	}
	return err
}
