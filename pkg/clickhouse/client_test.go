package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantHost  string
		scheme    string
		wantQuery map[string]string
	}{
		{
			name:     "native with timeouts",
			cfg:      Config{Host: "ch", Port: 9000, Database: "signals", User: "u", Password: "p", DialTimeout: 5 * time.Second, ReadTimeout: 10 * time.Second},
			wantHost: "ch:9000",
			scheme:   "clickhouse",
			wantQuery: map[string]string{
				"dial_timeout": "5s",
				"read_timeout": "10s",
			},
		},
		{
			name:     "http with async insert",
			cfg:      Config{Host: "ch", Port: 8123, Database: "default", UseHTTP: true, AsyncInsert: true, WaitForAsync: true, MaxExecTime: 30 * time.Second},
			wantHost: "ch:8123",
			scheme:   "http",
			wantQuery: map[string]string{
				"async_insert":          "1",
				"wait_for_async_insert": "1",
				"max_execution_time":    "30",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(BuildDSN(tt.cfg))
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, u.Scheme)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, "/"+tt.cfg.Database, u.Path)
			for k, v := range tt.wantQuery {
				assert.Equal(t, v, u.Query().Get(k), k)
			}
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorContains(t, err, "host is required")
}
