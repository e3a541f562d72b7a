package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MarketPulse-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("MarketPulse-test"))
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"AAPL"}},
	}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	var raw []byte
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &raw)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestSendRequestRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	c := NewClient(WithRetry(2, time.Millisecond), WithRateLimit(1000, 10))
	var raw []byte
	require.NoError(t, c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &raw))
	assert.Equal(t, "done", string(raw))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
