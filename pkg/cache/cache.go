package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Remember returns the cached value under key, or calls load and caches its result.
// Cache failures degrade to calling load; load errors are never cached.
func Remember[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, bool, error) {
	var out T
	if c == nil {
		v, err := load(ctx)
		return v, false, err
	}
	if err := c.Get(ctx, key, &out); err == nil {
		return out, true, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, false, nil
}
