package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Ticker string  `json:"ticker"`
	Close  float64 `json:"close"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", payload{"AAPL", 190}, time.Minute))
	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, payload{"AAPL", 190}, got)

	var s string
	require.NoError(t, c.Set(ctx, "s", "raw", 0))
	require.NoError(t, c.Get(ctx, "s", &s))
	assert.Equal(t, "raw", s)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiryAndEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(WithMemoryMaxSize(2))
	now := time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", 1, time.Second))
	require.NoError(t, c.Set(ctx, "b", 2, time.Hour))
	var v int
	require.NoError(t, c.Get(ctx, "a", &v)) // a becomes most recent
	require.NoError(t, c.Set(ctx, "c", 3, time.Hour))

	assert.ErrorIs(t, c.Get(ctx, "b", &v), ErrCacheMiss, "least recently used entry is evicted")
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "a", &v), ErrCacheMiss)
	ok, _ := c.Exists(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCacheLock(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	ok, err := c.TryLock(ctx, "schedule", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = c.TryLock(ctx, "schedule", time.Minute)
	assert.False(t, ok)
	require.NoError(t, c.Unlock(ctx, "schedule"))
	ok, _ = c.TryLock(ctx, "schedule", time.Minute)
	assert.True(t, ok)
}

func TestLayeredPromotesFromL2(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewMemoryCache(), NewMemoryCache()
	lc := NewLayeredCache(l1, l2, time.Minute)

	require.NoError(t, l2.Set(ctx, "k", payload{"MSFT", 300}, time.Hour))
	var got payload
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "MSFT", got.Ticker)

	ok, _ := l1.Exists(ctx, "k")
	assert.True(t, ok)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	calls := 0
	load := func(context.Context) ([]payload, error) {
		calls++
		return []payload{{"AAPL", 1}}, nil
	}

	v, hit, err := Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	v, hit, err = Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "AAPL", v[0].Ticker)
	assert.Equal(t, 1, calls)

	_, _, err = Remember(ctx, c, "bad", time.Minute, func(context.Context) (int, error) { return 0, errors.New("down") })
	assert.Error(t, err)
	ok, _ := c.Exists(ctx, "bad")
	assert.False(t, ok)
}

func TestRequestKeyStable(t *testing.T) {
	a := RequestKey("macro", map[string][]string{"ids": {"GDP"}})
	b := RequestKey("macro", map[string][]string{"ids": {"GDP"}})
	c := RequestKey("macro", map[string][]string{"ids": {"UNRATE"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRedisConfigDefaults(t *testing.T) {
	cfg := RedisConfig{Addr: "redis:6380"}
	require.NoError(t, cfg.applyDefaults())
	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "marketpulse", cfg.Prefix)
}
