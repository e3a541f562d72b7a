package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4", 3, 1), "request %d", i)
	}
	assert.False(t, l.Allow("1.2.3.4", 3, 1))
	assert.True(t, l.Allow("5.6.7.8", 3, 1), "buckets are per key")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4", 3, 1))
	assert.False(t, l.Allow("1.2.3.4", 3, 1))
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	l.Allow("a", 1, 1)
	now = now.Add(idleAfter + time.Second)
	l.Allow("b", 1, 1)

	assert.NotContains(t, l.m, "a")
	assert.Contains(t, l.m, "b")
}

func TestLimiterRefillCapsAtCapacity(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k", 2, 1))
	now = now.Add(time.Minute)
	assert.True(t, l.Allow("k", 2, 1))
	assert.True(t, l.Allow("k", 2, 1))
	assert.False(t, l.Allow("k", 2, 1))
}
