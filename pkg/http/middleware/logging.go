package middleware

import (
	"time"

	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request. 5xx responses are logged at error level.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = applogger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the error so the logged status is the one the client sees
				c.Error(err)
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			log := l.WithContext(req.Context())
			if c.Response().Status >= 500 {
				log.Error("http request", fields...)
			} else {
				log.Info("http request", fields...)
			}
			return nil
		}
	}
}
