package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Limiter is a keyed token bucket.
type Limiter interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// RateLimit allows perMinute requests per client IP, refilling evenly over the minute.
// Paths in skip are never limited.
func RateLimit(l Limiter, perMinute int, skip ...string) echo.MiddlewareFunc {
	capacity := float64(perMinute)
	refill := capacity / 60
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Path()]; ok || perMinute <= 0 {
				return next(c)
			}
			if !l.Allow(c.RealIP(), capacity, refill) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"detail": "Rate limit exceeded"})
			}
			return next(c)
		}
	}
}
