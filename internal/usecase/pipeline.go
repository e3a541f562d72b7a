package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PipelineOutput is the merged result of every source stage. Each stage writes only its own fields.
type PipelineOutput struct {
	Input    AggregateInput
	Insights models.AgentInsights
}

// RunEvent is broadcast to live subscribers when a run completes.
type RunEvent struct {
	RunID  string                  `json:"run_id"`
	At     time.Time               `json:"at"`
	Result []models.Recommendation `json:"result"`
}

// Sinks receive completed runs. Any of them may be nil.
type Sinks struct {
	Store       domrepo.RecommendationStore
	Publisher   domrepo.Publisher
	Broadcaster domrepo.Broadcaster
}

// Pipeline runs the source stages in dependency order, scores the merged output
// and hands the result to the sinks.
type Pipeline struct {
	agents     *AgentUseCase
	aggregator *Aggregator
	sinks      Sinks
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	newID      func() string
}

func NewPipeline(agents *AgentUseCase, aggregator *Aggregator, sinks Sinks, metrics domrepo.Metrics, logger *applogger.Logger) *Pipeline {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Pipeline{
		agents:     agents,
		aggregator: aggregator,
		sinks:      sinks,
		metrics:    metrics,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Run executes one insights run. Stage failures are reported in Errors and never abort the run.
func (p *Pipeline) Run(ctx context.Context, req models.InsightsRequest) (*models.InsightsResponse, error) {
	runID := p.newID()
	ctx, span := tracing.StartSpan(ctx, "insights.run",
		attribute.String("run_id", runID),
		attribute.StringSlice("tickers", req.Tickers),
	)
	defer span.End()
	log := p.logger.WithContext(ctx).With(applogger.String("run_id", runID))

	start := time.Now()
	out := &PipelineOutput{}
	stageErrs, err := InsightsGraph().Run(ctx, func(ctx context.Context, stage string) error {
		return p.runStage(ctx, stage, req, out)
	})
	if err != nil {
		return nil, fmt.Errorf("insights graph: %w", err)
	}

	recs := p.aggregator.Aggregate(ctx, out.Input)

	resp := &models.InsightsResponse{
		Status:        models.StatusSuccess,
		Result:        recs,
		AgentInsights: out.Insights,
	}
	if len(stageErrs) > 0 {
		resp.Errors = make(map[string]string, len(stageErrs))
		for stage, err := range stageErrs {
			resp.Errors[stage] = err.Error()
			log.Warn("stage failed", applogger.String("stage", stage), applogger.Error(err))
		}
	}

	p.deliver(ctx, log, runID, out.Input.MarketData, recs)

	log.Info("insights run completed",
		applogger.Strings("tickers", req.Tickers),
		applogger.Int("recommendations", len(recs)),
		applogger.Int("failed_stages", len(stageErrs)),
		applogger.Duration("latency_ms", time.Since(start)),
	)
	return resp, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage string, req models.InsightsRequest, out *PipelineOutput) (err error) {
	ctx, span := tracing.StartSpan(ctx, "stage."+stage)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		tracing.End(span, err)
		if p.metrics != nil {
			p.metrics.RecordStage(stage, time.Since(start).Seconds(), err)
		}
	}()

	a := p.agents
	d := a.defaults
	switch stage {
	case StageMarketData:
		rows, err := a.src.Market.Fetch(ctx, models.MarketDataRequest{
			Tickers:            req.Tickers,
			Period:             req.Period,
			Interval:           req.Interval,
			AlphaVantageAPIKey: req.AlphaVantageAPIKey,
		})
		if err != nil {
			return err
		}
		out.Input.MarketData = rows
		out.Insights.MarketData = a.marketInsight(ctx, rows)

	case StageNews:
		nreq := models.NewsRequest{URLs: orDefault(req.URLs, d.NewsURLs), RSSURLs: orDefault(req.RSSURLs, d.RSSURLs)}
		articles, err := a.src.News.Fetch(ctx, nreq)
		if err != nil {
			return err
		}
		out.Input.News = articles
		out.Insights.News = a.newsInsight(ctx, articles)

	case StageSECFilings:
		cik := req.CIK
		if cik == "" {
			cik = d.CIK
		}
		filings, err := a.src.Filings.Fetch(ctx, models.SECFilingsRequest{CIK: cik})
		if err != nil {
			return err
		}
		out.Input.Filings = filings
		out.Insights.SECFilings = a.filingsInsight(ctx, filings)

	case StageSocialSentiment:
		posts, err := a.src.Social.Fetch(ctx, models.SocialSentimentRequest{
			Subreddits: orDefault(req.Subreddits, d.Subreddits),
			Symbol:     firstTicker(req.Tickers),
		})
		if err != nil {
			return err
		}
		out.Input.Sentiment = posts
		out.Insights.SocialSentiment = a.socialInsight(ctx, posts)

	case StageMacro:
		snap, err := a.src.Macro.Fetch(ctx, models.MacroRequest{MacroIndicators: orDefault(req.MacroIndicators, d.MacroIndicators)})
		if err != nil {
			return err
		}
		out.Input.Macro = snap
		out.Insights.Macro = a.macroInsight(ctx, snap)

	case StageCompanyEvent:
		ev, err := a.src.Company.Fetch(ctx, d.Company)
		if err != nil {
			return err
		}
		out.Input.CompanyEvents = &ev
		out.Insights.CompanyEvents = a.companyInsight(ctx, ev)

	case StageStartupSignals:
		sig, err := a.src.Startup.Fetch(ctx, d.Startup)
		if err != nil {
			return err
		}
		out.Input.StartupSignals = &sig
		out.Insights.StartupSignals = a.startupInsight(ctx, sig)

	case StageNLPEvent:
		text := nlpText(req.Text, out.Input.News, out.Input.Filings, d.NLPText)
		ev, err := a.src.NLP.Extract(ctx, text)
		if err != nil {
			return err
		}
		out.Input.ExtractedEvents = &ev
		out.Insights.NLPEvent = a.nlpInsight(ctx, text)

	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return nil
}

// deliver hands a completed run to every configured sink. Failures are logged and counted.
func (p *Pipeline) deliver(ctx context.Context, log *applogger.Logger, runID string, rows []models.MarketRecord, recs []models.Recommendation) {
	sinkErr := func(kind string, err error) {
		log.Error("sink failed", applogger.String("sink", kind), applogger.Error(err))
		if p.metrics != nil {
			p.metrics.RecordError("sink_" + kind)
		}
	}

	if s := p.sinks.Store; s != nil {
		if err := s.StoreRun(ctx, runID, recs); err != nil {
			sinkErr("store_run", err)
		}
		if err := s.StoreMarketData(ctx, rows); err != nil {
			sinkErr("store_market", err)
		}
	}
	if pub := p.sinks.Publisher; pub != nil {
		if err := pub.PublishRun(ctx, runID, recs); err != nil {
			sinkErr("publish", err)
		}
	}
	if b := p.sinks.Broadcaster; b != nil {
		b.Broadcast(RunEvent{RunID: runID, At: time.Now().UTC(), Result: recs})
	}
}

// nlpText picks the text for event extraction: the request's own text, then the
// titles of the news and filings gathered in this run, then the default text.
func nlpText(text string, news []models.NewsArticle, filings []models.Filing, fallback string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	var titles []string
	for _, n := range news {
		if t := strings.TrimSpace(n.Title); t != "" {
			titles = append(titles, ensurePeriod(t))
		}
	}
	for _, f := range filings {
		if t := strings.TrimSpace(f.Title); t != "" {
			titles = append(titles, ensurePeriod(t))
		}
	}
	if len(titles) == 0 {
		return fallback
	}
	return strings.Join(titles, " ")
}

func ensurePeriod(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

func firstTicker(tickers []string) string {
	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			return t
		}
	}
	return ""
}
