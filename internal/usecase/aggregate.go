package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/tracing"
	"MarketPulse/pkg/util"

	"go.opentelemetry.io/otel/attribute"
)

var errNotAnObject = errors.New("summarizer reply is not a JSON object")

const (
	neutralConfidence = 3
	buyThreshold      = 3
	rsiOversold       = 40
)

// AggregateInput carries the materialized output of every source stage.
type AggregateInput struct {
	MarketData      []models.MarketRecord
	News            []models.NewsArticle
	Filings         []models.Filing
	Sentiment       []models.SentimentPost
	Macro           models.MacroSnapshot
	CompanyEvents   *models.CompanyEvents
	StartupSignals  *models.StartupSignals
	ExtractedEvents *models.ExtractedEvents
}

// Aggregator joins source outputs per ticker and scores each ticker.
// A nil summarizer selects the rule-based scorer.
type Aggregator struct {
	summarizer domsvc.Summarizer
	timeout    time.Duration
	logger     *applogger.Logger
	metrics    domrepo.Metrics
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithSummarizerTimeout bounds each summarizer call.
func WithSummarizerTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.timeout = d }
}

// WithAggregatorLogger logs absorbed summarizer failures.
func WithAggregatorLogger(l *applogger.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// WithAggregatorMetrics counts verdicts.
func WithAggregatorMetrics(m domrepo.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(s domsvc.Summarizer, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{summarizer: s, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate returns one recommendation per distinct ticker in in.MarketData, ordered by
// score descending. Ties keep the order in which tickers first appear. It never fails.
func (a *Aggregator) Aggregate(ctx context.Context, in AggregateInput) []models.Recommendation {
	ctx, span := tracing.StartSpan(ctx, "aggregate", attribute.Int("market_rows", len(in.MarketData)))
	defer span.End()

	contexts, order := buildContexts(in)
	out := make([]models.Recommendation, 0, len(order))
	for _, ticker := range order {
		tc := contexts[ticker]
		var rec models.Recommendation
		if a.summarizer != nil {
			rec = a.scoreWithSummarizer(ctx, ticker, tc)
		} else {
			rec = scoreByRules(ticker, tc)
		}
		if a.metrics != nil {
			a.metrics.RecordVerdict(rec.Recommendation)
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// buildContexts groups market rows by ticker. A repeated ticker keeps its first position
// and takes the latest row.
func buildContexts(in AggregateInput) (map[string]models.TickerContext, []string) {
	contexts := make(map[string]models.TickerContext)
	var order []string
	for _, row := range in.MarketData {
		ticker := strings.TrimSpace(row.Ticker)
		if ticker == "" {
			continue
		}
		if _, seen := contexts[ticker]; !seen {
			order = append(order, ticker)
		}
		contexts[ticker] = models.TickerContext{
			MarketData: row,
			News:       filterByTicker(in.News, ticker, func(n models.NewsArticle) string { return n.Ticker }),
			SECFilings: filterByTicker(in.Filings, ticker, func(f models.Filing) string { return f.Ticker }),
			Sentiment:  filterByTicker(in.Sentiment, ticker, func(s models.SentimentPost) string { return s.Ticker }),
			Macro:      in.Macro,
			Events:     in.CompanyEvents,
			Startup:    in.StartupSignals,
			NLP:        in.ExtractedEvents,
		}
	}
	return contexts, order
}

// nonZero treats a zero reading like a missing one.
func nonZero(m models.Metric) bool { return m.Valid && m.Value != 0 }

// filterByTicker keeps records tagged with ticker and records carrying no ticker at all.
func filterByTicker[T any](items []T, ticker string, tagOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		tag := strings.TrimSpace(tagOf(it))
		if tag == "" || tag == ticker {
			out = append(out, it)
		}
	}
	return out
}

func scoreByRules(ticker string, tc models.TickerContext) models.Recommendation {
	md := tc.MarketData
	score := 0
	if nonZero(md.Close) && nonZero(md.SMA20) && md.Close.GreaterThan(md.SMA20) {
		score++
	}
	if nonZero(md.RSI14) && md.RSI14.LessThan(rsiOversold) {
		score++
	}
	if len(tc.News) > 0 {
		score++
	}
	if len(tc.Sentiment) > 0 {
		score++
	}

	rec := models.Recommendation{
		Ticker:         ticker,
		Score:          score,
		Recommendation: models.VerdictWatch,
		Insight:        insightNeedsMore,
		Signals:        tc,
	}
	if score >= buyThreshold {
		rec.Recommendation = models.VerdictBuy
		rec.Insight = insightStrong
	}
	return rec
}

func (a *Aggregator) scoreWithSummarizer(ctx context.Context, ticker string, tc models.TickerContext) models.Recommendation {
	rec := models.Recommendation{Ticker: ticker, Signals: tc}

	payload, err := json.Marshal(tc)
	if err != nil {
		return a.summarizerFallback(rec, err)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	raw, err := a.summarizer.Summarize(callCtx, promptRecommendation, string(payload))
	if err != nil {
		return a.summarizerFallback(rec, err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return a.summarizerFallback(rec, err)
	}
	if a.logger != nil {
		a.logger.Debug("summarizer verdict",
			applogger.String("ticker", ticker),
			applogger.String("raw", util.Truncate(raw, 200)))
	}
	rec.Score = verdict.confidence
	rec.Recommendation = verdict.recommendation
	rec.Insight = verdict.explanation
	return rec
}

func (a *Aggregator) summarizerFallback(rec models.Recommendation, err error) models.Recommendation {
	if a.logger != nil {
		a.logger.Warn("summarizer failed, falling back to Watch",
			applogger.String("ticker", rec.Ticker),
			applogger.Error(err),
		)
	}
	rec.Score = neutralConfidence
	rec.Recommendation = models.VerdictWatch
	rec.Insight = insightSummarizerKO
	return rec
}

type verdict struct {
	recommendation string
	confidence     int
	explanation    string
}

// parseVerdict reads the summarizer reply. Text that is not JSON is used verbatim as
// both recommendation and explanation. JSON that is not an object is an error.
func parseVerdict(raw string) (verdict, error) {
	v := verdict{recommendation: raw, confidence: neutralConfidence, explanation: raw}

	body := []byte(stripCodeFence(raw))
	if !json.Valid(body) {
		return v, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return v, errNotAnObject
	}

	v.recommendation = models.VerdictWatch
	if s, ok := stringField(obj["recommendation"]); ok && s != "" {
		v.recommendation = s
	}
	if c, ok := confidenceField(obj["confidence"]); ok {
		v.confidence = c
	}
	if s, ok := stringField(obj["explanation"]); ok && s != "" {
		v.explanation = s
	}
	return v, nil
}

func stringField(m json.RawMessage) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(m, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// confidenceField accepts a number or a numeric string, truncated toward zero.
// null and anything non-numeric count as missing.
func confidenceField(m json.RawMessage) (int, bool) {
	if len(m) == 0 {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(m, &f); err == nil {
		if f == nil {
			return 0, false
		}
		return int(math.Trunc(*f)), true
	}
	if s, ok := stringField(m); ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return int(math.Trunc(v)), true
		}
	}
	return 0, false
}

// stripCodeFence removes a surrounding ``` block that chat models often add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
