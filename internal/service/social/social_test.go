package social

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/r/stocks/hot.json":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"data":{"children":[
				{"data":{"title":"AAPL looks strong","score":120}},
				{"data":{"title":"Market crash incoming","score":4}}]}}`))
		case r.URL.Path == "/r/broken/hot.json":
			http.Error(w, "nope", http.StatusForbidden)
		case strings.HasPrefix(r.URL.Path, "/streams/AAPL.json"):
			var msgs []string
			for i := 0; i < 12; i++ {
				msgs = append(msgs, fmt.Sprintf(`{"body":"$AAPL great %d"}`, i))
			}
			_, _ = w.Write([]byte(`{"messages":[` + strings.Join(msgs, ",") + `]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	svc := NewService(xhttp.NewClient(), applogger.Nop(),
		WithRedditURL(srv.URL+"/"), WithStockTwitsURL(srv.URL+"/streams/"))

	posts, err := svc.Fetch(context.Background(), models.SocialSentimentRequest{
		Subreddits: []string{"stocks", "broken"},
		Symbol:     "aapl",
	})
	require.NoError(t, err)
	require.Len(t, posts, 12, "2 reddit posts and 10 stream messages")

	assert.Equal(t, PlatformReddit, posts[0].Platform)
	assert.Equal(t, "stocks", posts[0].Subreddit)
	assert.Equal(t, 120, posts[0].Score)
	assert.Greater(t, posts[0].Sentiment, 0.0)
	assert.Less(t, posts[1].Sentiment, 0.0)

	assert.Equal(t, PlatformStockTwits, posts[2].Platform)
	assert.Equal(t, "AAPL", posts[2].Symbol)
	assert.Equal(t, "$AAPL great 0", posts[2].Body)
}

func TestFetchAllFailing(t *testing.T) {
	srv := newServer(t)
	svc := NewService(xhttp.NewClient(), applogger.Nop(),
		WithRedditURL(srv.URL), WithStockTwitsURL(srv.URL+"/streams/"))

	_, err := svc.Fetch(context.Background(), models.SocialSentimentRequest{
		Subreddits: []string{"broken"},
		Symbol:     "ZZZZ",
	})
	assert.Error(t, err)
}
