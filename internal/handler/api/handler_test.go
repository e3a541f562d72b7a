package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/repository"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

type fakeAgents struct {
	err       error
	marketReq models.MarketDataRequest
	socialReq models.SocialSentimentRequest
}

func (f *fakeAgents) MarketData(_ context.Context, req models.MarketDataRequest) (*models.MarketDataResponse, error) {
	f.marketReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.MarketDataResponse{Status: models.StatusSuccess, Result: []models.MarketRecord{}, Insights: "live"}, nil
}

func (f *fakeAgents) News(context.Context, models.NewsRequest) (*models.NewsResponse, error) {
	return &models.NewsResponse{Status: models.StatusSuccess, Result: []models.NewsArticle{}}, f.err
}

func (f *fakeAgents) SECFilings(context.Context, models.SECFilingsRequest) (*models.SECFilingsResponse, error) {
	return &models.SECFilingsResponse{Status: models.StatusSuccess, Result: []models.Filing{}}, f.err
}

func (f *fakeAgents) SocialSentiment(_ context.Context, req models.SocialSentimentRequest) (*models.SocialSentimentResponse, error) {
	f.socialReq = req
	return &models.SocialSentimentResponse{Status: models.StatusSuccess, Result: []models.SentimentPost{}}, f.err
}

func (f *fakeAgents) Macro(context.Context, models.MacroRequest) (*models.MacroResponse, error) {
	return &models.MacroResponse{Status: models.StatusSuccess, Result: models.MacroSnapshot{}}, f.err
}

func (f *fakeAgents) CompanyEvents(context.Context, models.CompanyEventRequest) (*models.CompanyEventResponse, error) {
	return &models.CompanyEventResponse{Status: models.StatusSuccess}, f.err
}

func (f *fakeAgents) StartupSignals(context.Context, models.StartupSignalsRequest) (*models.StartupSignalsResponse, error) {
	return &models.StartupSignalsResponse{Status: models.StatusSuccess}, f.err
}

func (f *fakeAgents) NLPEvent(context.Context, models.NLPEventRequest) (*models.NLPEventResponse, error) {
	return &models.NLPEventResponse{Status: models.StatusSuccess}, f.err
}

func (f *fakeAgents) CombinedSentiment(context.Context, models.CombinedSentimentRequest) (*models.CombinedSentimentResponse, error) {
	return &models.CombinedSentimentResponse{Status: models.StatusSuccess, Result: map[string]models.CombinedSentiment{}}, f.err
}

type fakeRunner struct {
	calls int
	err   error
}

func (r *fakeRunner) Run(_ context.Context, req models.InsightsRequest) (*models.InsightsResponse, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &models.InsightsResponse{
		Status: models.StatusSuccess,
		Result: []models.Recommendation{{Ticker: req.Tickers[0], Score: 4, Recommendation: models.VerdictBuy}},
	}, nil
}

type fakeJobs struct {
	jobs map[string]*models.Job
	err  error
}

func (j *fakeJobs) Submit(_ context.Context, req models.InsightsRequest, source string) (*models.Job, error) {
	if j.err != nil {
		return nil, j.err
	}
	job := &models.Job{ID: "job-1", State: models.JobQueued, Request: req, Source: source}
	j.jobs[job.ID] = job
	return job, nil
}

func (j *fakeJobs) Get(_ context.Context, id string) (*models.Job, error) {
	job, ok := j.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return job, nil
}

type fakeHistory struct {
	ticker string
	limit  int
}

func (s *fakeHistory) Init(context.Context) error { return nil }
func (s *fakeHistory) StoreRun(context.Context, string, []models.Recommendation) error {
	return nil
}
func (s *fakeHistory) StoreMarketData(context.Context, []models.MarketRecord) error { return nil }
func (s *fakeHistory) History(_ context.Context, ticker string, limit int) ([]models.StoredRecommendation, error) {
	s.ticker, s.limit = ticker, limit
	return []models.StoredRecommendation{{RunID: "r1", Ticker: ticker, Score: 4}}, nil
}
func (s *fakeHistory) Health(context.Context) error { return nil }
func (s *fakeHistory) Close() error                 { return nil }

func newTestEcho(h *InsightsHandler) *echo.Echo {
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		agentErr error
		wantCode int
		contains string
	}{
		{name: "insights", path: "/insights/run", body: `{"tickers":["AAPL"]}`, wantCode: http.StatusOK, contains: `"recommendation":"Buy"`},
		{name: "insights needs tickers", path: "/insights/run", body: `{"tickers":[]}`, wantCode: http.StatusBadRequest, contains: "ERR_MIN"},
		{name: "insights bad period", path: "/insights/run", body: `{"tickers":["AAPL"],"period":"9y"}`, wantCode: http.StatusBadRequest, contains: "ERR_ONEOF"},
		{name: "malformed body", path: "/marketdata/run", body: `{"tickers":`, wantCode: http.StatusBadRequest, contains: "ERR_UNKNOWN"},
		{name: "market data", path: "/marketdata/run", body: `{"tickers":["AAPL"]}`, wantCode: http.StatusOK, contains: `"market_data_insights":"live"`},
		{name: "market data upstream failure", path: "/marketdata/run", body: `{"tickers":["AAPL"]}`, agentErr: errUpstream, wantCode: http.StatusBadGateway, contains: "ERR_UPSTREAM"},
		{name: "news needs urls", path: "/news/run", body: `{}`, wantCode: http.StatusBadRequest, contains: `"field":"urls"`},
		{name: "news rejects relative url", path: "/news/run", body: `{"urls":["/markets"]}`, wantCode: http.StatusBadRequest, contains: "ERR_URL"},
		{name: "sec needs digits", path: "/secfilings/run", body: `{"cik":"abc"}`, wantCode: http.StatusBadRequest, contains: "ERR_NUMERIC"},
		{name: "sec", path: "/secfilings/run", body: `{"cik":"0000320193"}`, wantCode: http.StatusOK, contains: `"sec_filings_insights"`},
		{name: "macro defaults", path: "/macro/run", body: `{}`, wantCode: http.StatusOK, contains: `"macro_insights"`},
		{name: "company defaults", path: "/companyevent/run", body: `{}`, wantCode: http.StatusOK, contains: `"company_events_insights"`},
		{name: "startup repo needs slash", path: "/startupsignals/run", body: `{"repo":"gym"}`, wantCode: http.StatusBadRequest, contains: "ERR_CONTAINS"},
		{name: "nlp needs text", path: "/nlpevent/run", body: `{}`, wantCode: http.StatusBadRequest, contains: "ERR_REQUIRED"},
		{name: "nlp rejects empty text", path: "/nlpevent/run", body: `{"text":""}`, wantCode: http.StatusBadRequest, contains: `"field":"text"`},
		{name: "nlp", path: "/nlpevent/run", body: `{"text":"Apple launched a phone."}`, wantCode: http.StatusOK, contains: `"nlp_event_insights"`},
		{name: "combined", path: "/combinedsentiment/run", body: `{"tickers":["AAPL"]}`, wantCode: http.StatusOK, contains: `"status":"success"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInsightsHandler(nil, &fakeAgents{err: tt.agentErr}, &fakeRunner{})
			rec := do(newTestEcho(h), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRunEndpointDefaults(t *testing.T) {
	agents := &fakeAgents{}
	e := newTestEcho(NewInsightsHandler(nil, agents, &fakeRunner{}))

	rec := do(e, http.MethodPost, "/socialsentiment/run", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"stocks", "wallstreetbets"}, agents.socialReq.Subreddits)
	assert.Equal(t, "AAPL", agents.socialReq.Symbol)

	rec = do(e, http.MethodPost, "/marketdata/run", `{"tickers":["MSFT"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1y", agents.marketReq.Period)
	assert.Equal(t, "1d", agents.marketReq.Interval)
}

func TestMockResponses(t *testing.T) {
	runner := &fakeRunner{}
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{err: errUpstream}, runner))

	rec := do(e, http.MethodPost, "/insights/run?mock=1", `{"tickers":["ZZZ"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, runner.calls)

	var resp models.InsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Result, 2)
	assert.Equal(t, "AAPL", resp.Result[0].Ticker)
	assert.Equal(t, 95, resp.Result[0].Score)
	assert.Equal(t, "AAPL is trending upward with strong momentum.", resp.MarketData)

	rec = do(e, http.MethodPost, "/startupsignals/run?mock=1", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status":"success",
		"result":{"github_stars":{"repo":"openai/gym","stars":5000},"funding_news":[],"job_postings":[]},
		"startup_signals_insights":"OpenAI's repo is gaining traction."
	}`, rec.Body.String())
}

func TestJobsRoutes(t *testing.T) {
	jobs := &fakeJobs{jobs: map[string]*models.Job{}}
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{}, WithJobs(jobs)))

	rec := do(e, http.MethodPost, "/insights/jobs", `{"tickers":["AAPL"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued","job_id":"job-1"}`, rec.Body.String())
	assert.Equal(t, usecase.JobSourceAPI, jobs.jobs["job-1"].Source)

	rec = do(e, http.MethodGet, "/insights/jobs/job-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.Status)

	rec = do(e, http.MethodGet, "/insights/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")

	jobs.err = usecase.ErrQueueDisabled
	rec = do(e, http.MethodPost, "/insights/jobs", `{"tickers":["AAPL"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UNAVAILABLE")
}

func TestJobsRoutesWithoutQueue(t *testing.T) {
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{}))
	rec := do(e, http.MethodPost, "/insights/jobs", `{"tickers":["AAPL"]}`)
	assert.Contains(t, rec.Body.String(), "ERR_UNAVAILABLE")
}

func TestHistoryRoute(t *testing.T) {
	store := &fakeHistory{}
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{}, WithHistory(store)))

	rec := do(e, http.MethodGet, "/insights/history/aapl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", store.ticker)
	assert.Equal(t, 20, store.limit)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = do(e, http.MethodGet, "/insights/history/aapl?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.limit)

	rec = do(e, http.MethodGet, "/insights/history/aapl?limit=1000", "")
	assert.Contains(t, rec.Body.String(), "ERR_MAX")
}

func TestHealth(t *testing.T) {
	h := NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{},
		WithProbe("market_data", func(context.Context) bool { return true }),
		WithProbe("llm_key", func(context.Context) bool { return false }),
		WithProbe("redis", func(context.Context) bool { panic("boom") }),
	)
	rec := do(newTestEcho(h), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"market_data":true,"llm_key":false,"redis":false}}`, rec.Body.String())
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, []string{"*"})
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{}, WithHub(hub)))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/insights"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Broadcast(usecase.RunEvent{RunID: "run-1", Result: []models.Recommendation{{Ticker: "AAPL"}}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got usecase.RunEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "AAPL", got.Result[0].Ticker)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(nil, []string{"https://app.example.com"})
	e := newTestEcho(NewInsightsHandler(nil, &fakeAgents{}, &fakeRunner{}, WithHub(hub)))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/insights"
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
