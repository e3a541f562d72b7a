package startup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/githubapi"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repos/openai/gym", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"full_name":"openai/gym","stargazers_count":34000}`))
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OpenAI funding", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`<rss><channel>
<item><title>OpenAI raised $6.6B in new round</title></item>
<item><title>OpenAI ships a new model</title></item>
<item><title>Investors eye OpenAI valuation</title></item>
</channel></rss>`))
	})
	mux.HandleFunc("/boards/openai/jobs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs":[{"title":"ML Engineer","location":{"name":"San Francisco"}},{"title":"Recruiter"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gh, err := githubapi.New("", srv.URL+"/api/")
	require.NoError(t, err)
	svc := NewService(xhttp.NewClient(), gh, applogger.Nop(),
		WithNewsURL(srv.URL+"/news"), WithGreenhouseURL(srv.URL+"/boards/"))

	got, err := svc.Fetch(context.Background(), models.StartupSignalsRequest{Repo: "openai/gym", Company: "OpenAI"})
	require.NoError(t, err)

	require.NotNil(t, got.GithubStars.Stars)
	assert.Equal(t, 34000, *got.GithubStars.Stars)
	assert.Equal(t, "openai/gym", got.GithubStars.Repo)
	assert.Equal(t, []string{"OpenAI raised $6.6B in new round", "Investors eye OpenAI valuation"}, got.FundingNews)
	assert.Equal(t, []string{"OpenAI is hiring ML Engineer (San Francisco)", "OpenAI is hiring Recruiter"}, got.JobPostings)
}

func TestFetchUnknownRepo(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	gh, err := githubapi.New("", srv.URL)
	require.NoError(t, err)
	svc := NewService(xhttp.NewClient(), gh, applogger.Nop(),
		WithNewsURL(srv.URL+"/news"), WithGreenhouseURL(srv.URL+"/boards/"))

	got, err := svc.Fetch(context.Background(), models.StartupSignalsRequest{Repo: "nobody/nothing", Company: "Acme"})
	require.NoError(t, err)
	assert.Nil(t, got.GithubStars.Stars)
	assert.Empty(t, got.FundingNews)
	assert.NotNil(t, got.JobPostings)
}
