package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an untouched limiter is kept before it is swept.
const idleAfter = 10 * time.Minute

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per caller key.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*entry
	now       func() time.Time
	lastSweep time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*entry), now: time.Now} }

// Allow consumes one token for key. A new key starts with a full bucket of
// capacity tokens refilled at refillPerSec.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	e, ok := l.m[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(rate.Limit(refillPerSec), int(capacity))}
		l.m[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

// sweep drops idle limiters. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleAfter {
		return
	}
	l.lastSweep = now
	for k, e := range l.m {
		if now.Sub(e.seen) >= idleAfter {
			delete(l.m, k)
		}
	}
}
