package cache

import (
	"time"

	"github.com/creasty/defaults"
)

// RedisConfig describes the shared Redis connection. Zero fields take the
// `default` tag value.
type RedisConfig struct {
	Addr         string        `default:"localhost:6379"`
	Password     string
	DB           int
	PoolSize     int           `default:"10"`
	MinIdleConns int           `default:"2"`
	PoolTimeout  time.Duration `default:"30s"`
	DialTimeout  time.Duration `default:"5s"`
	Prefix       string        `default:"marketpulse"`
}

func (c *RedisConfig) applyDefaults() error {
	return defaults.Set(c)
}
