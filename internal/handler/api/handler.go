package api

import (
	"context"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Agents runs one source adapter per call.
type Agents interface {
	MarketData(ctx context.Context, req models.MarketDataRequest) (*models.MarketDataResponse, error)
	News(ctx context.Context, req models.NewsRequest) (*models.NewsResponse, error)
	SECFilings(ctx context.Context, req models.SECFilingsRequest) (*models.SECFilingsResponse, error)
	SocialSentiment(ctx context.Context, req models.SocialSentimentRequest) (*models.SocialSentimentResponse, error)
	Macro(ctx context.Context, req models.MacroRequest) (*models.MacroResponse, error)
	CompanyEvents(ctx context.Context, req models.CompanyEventRequest) (*models.CompanyEventResponse, error)
	StartupSignals(ctx context.Context, req models.StartupSignalsRequest) (*models.StartupSignalsResponse, error)
	NLPEvent(ctx context.Context, req models.NLPEventRequest) (*models.NLPEventResponse, error)
	CombinedSentiment(ctx context.Context, req models.CombinedSentimentRequest) (*models.CombinedSentimentResponse, error)
}

// Jobs submits and reads asynchronous insights runs.
type Jobs interface {
	usecase.Submitter
	Get(ctx context.Context, id string) (*models.Job, error)
}

// Probe reports whether one dependency is usable.
type Probe func(ctx context.Context) bool

// InsightsHandler serves the agent, job, history, live and health routes.
type InsightsHandler struct {
	logger  *applogger.Logger
	agents  Agents
	runner  usecase.InsightsRunner
	jobs    Jobs
	history domrepo.RecommendationStore
	hub     *Hub
	probes  map[string]Probe
}

type Option func(*InsightsHandler)

// WithJobs enables POST /insights/jobs and GET /insights/jobs/:id.
func WithJobs(j Jobs) Option { return func(h *InsightsHandler) { h.jobs = j } }

// WithHistory enables GET /insights/history/:ticker.
func WithHistory(s domrepo.RecommendationStore) Option {
	return func(h *InsightsHandler) { h.history = s }
}

// WithHub enables GET /ws/insights.
func WithHub(hub *Hub) Option { return func(h *InsightsHandler) { h.hub = hub } }

// WithProbe adds a named /health check.
func WithProbe(name string, p Probe) Option {
	return func(h *InsightsHandler) { h.probes[name] = p }
}

func NewInsightsHandler(logger *applogger.Logger, agents Agents, runner usecase.InsightsRunner, opts ...Option) *InsightsHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	h := &InsightsHandler{logger: logger, agents: agents, runner: runner, probes: map[string]Probe{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *InsightsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/insights/run", h.Insights)
	e.POST("/marketdata/run", h.MarketData)
	e.POST("/news/run", h.News)
	e.POST("/secfilings/run", h.SECFilings)
	e.POST("/socialsentiment/run", h.SocialSentiment)
	e.POST("/macro/run", h.Macro)
	e.POST("/companyevent/run", h.CompanyEvents)
	e.POST("/startupsignals/run", h.StartupSignals)
	e.POST("/nlpevent/run", h.NLPEvent)
	e.POST("/combinedsentiment/run", h.CombinedSentiment)

	e.POST("/insights/jobs", h.SubmitJob)
	e.GET("/insights/jobs/:id", h.GetJob)
	e.GET("/insights/history/:ticker", h.History)
	e.GET("/ws/insights", h.Live)
	e.GET("/health", h.Health)
}

var _ xhttp.Handler = (*InsightsHandler)(nil)
