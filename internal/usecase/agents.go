package usecase

import (
	"context"
	"fmt"
	"strings"

	"MarketPulse/internal/domain/models"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

const (
	companyInsightItems = 5
	streamMessages      = 10
)

// AgentUseCase runs a single source adapter and attaches its insight.
type AgentUseCase struct {
	src      Sources
	insight  *Insighter
	defaults Defaults
	logger   *applogger.Logger
}

func NewAgentUseCase(src Sources, insight *Insighter, defaults Defaults, logger *applogger.Logger) *AgentUseCase {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &AgentUseCase{src: src, insight: insight, defaults: defaults, logger: logger}
}

func (uc *AgentUseCase) MarketData(ctx context.Context, req models.MarketDataRequest) (*models.MarketDataResponse, error) {
	rows, err := uc.src.Market.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("market data: %w", err)
	}
	return &models.MarketDataResponse{
		Status:   models.StatusSuccess,
		Result:   nonNil(rows),
		Insights: uc.marketInsight(ctx, rows),
	}, nil
}

func (uc *AgentUseCase) News(ctx context.Context, req models.NewsRequest) (*models.NewsResponse, error) {
	articles, err := uc.src.News.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	return &models.NewsResponse{
		Status:   models.StatusSuccess,
		Result:   nonNil(articles),
		Insights: uc.newsInsight(ctx, articles),
	}, nil
}

func (uc *AgentUseCase) SECFilings(ctx context.Context, req models.SECFilingsRequest) (*models.SECFilingsResponse, error) {
	filings, err := uc.src.Filings.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sec filings: %w", err)
	}
	return &models.SECFilingsResponse{
		Status:   models.StatusSuccess,
		Result:   nonNil(filings),
		Insights: uc.filingsInsight(ctx, filings),
	}, nil
}

func (uc *AgentUseCase) SocialSentiment(ctx context.Context, req models.SocialSentimentRequest) (*models.SocialSentimentResponse, error) {
	posts, err := uc.src.Social.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("social sentiment: %w", err)
	}
	return &models.SocialSentimentResponse{
		Status:   models.StatusSuccess,
		Result:   nonNil(posts),
		Insights: uc.socialInsight(ctx, posts),
	}, nil
}

func (uc *AgentUseCase) Macro(ctx context.Context, req models.MacroRequest) (*models.MacroResponse, error) {
	snap, err := uc.src.Macro.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("macro: %w", err)
	}
	if snap == nil {
		snap = models.MacroSnapshot{}
	}
	return &models.MacroResponse{
		Status:   models.StatusSuccess,
		Result:   snap,
		Insights: uc.macroInsight(ctx, snap),
	}, nil
}

func (uc *AgentUseCase) CompanyEvents(ctx context.Context, req models.CompanyEventRequest) (*models.CompanyEventResponse, error) {
	ev, err := uc.src.Company.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("company events: %w", err)
	}
	return &models.CompanyEventResponse{
		Status:   models.StatusSuccess,
		Result:   ev,
		Insights: uc.companyInsight(ctx, ev),
	}, nil
}

func (uc *AgentUseCase) StartupSignals(ctx context.Context, req models.StartupSignalsRequest) (*models.StartupSignalsResponse, error) {
	sig, err := uc.src.Startup.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("startup signals: %w", err)
	}
	return &models.StartupSignalsResponse{
		Status:   models.StatusSuccess,
		Result:   sig,
		Insights: uc.startupInsight(ctx, sig),
	}, nil
}

func (uc *AgentUseCase) NLPEvent(ctx context.Context, req models.NLPEventRequest) (*models.NLPEventResponse, error) {
	ev, err := uc.src.NLP.Extract(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("nlp event: %w", err)
	}
	return &models.NLPEventResponse{
		Status:   models.StatusSuccess,
		Result:   ev,
		Insights: uc.nlpInsight(ctx, req.Text),
	}, nil
}

// CombinedSentiment pairs each ticker's stream messages with the news that mention it.
// News is fetched once for all tickers; per-source failures leave that part empty.
func (uc *AgentUseCase) CombinedSentiment(ctx context.Context, req models.CombinedSentimentRequest) (*models.CombinedSentimentResponse, error) {
	newsReq := models.NewsRequest{URLs: req.URLs, RSSURLs: req.RSSURLs}
	if len(newsReq.URLs) == 0 {
		newsReq.URLs = uc.defaults.NewsURLs
	}
	if len(newsReq.RSSURLs) == 0 {
		newsReq.RSSURLs = uc.defaults.RSSURLs
	}
	articles, err := uc.src.News.Fetch(ctx, newsReq)
	if err != nil {
		uc.logger.WithContext(ctx).Warn("combined sentiment news failed", applogger.Error(err))
	}

	out := make(map[string]models.CombinedSentiment, len(req.Tickers))
	for _, ticker := range req.Tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		posts, err := uc.src.Social.Stream(ctx, ticker)
		if err != nil {
			uc.logger.WithContext(ctx).Warn("combined sentiment stream failed",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		out[ticker] = models.CombinedSentiment{
			StockTwits: nonNil(head(posts, streamMessages)),
			News:       mentioning(articles, ticker),
		}
	}
	return &models.CombinedSentimentResponse{Status: models.StatusSuccess, Result: out}, nil
}

// mentioning keeps articles whose title or text contains ticker, case-insensitively.
func mentioning(articles []models.NewsArticle, ticker string) []models.NewsArticle {
	out := make([]models.NewsArticle, 0)
	for _, a := range articles {
		if util.ContainsFold(a.Title, ticker) || util.ContainsFold(a.Text, ticker) {
			out = append(out, a)
		}
	}
	return out
}

func (uc *AgentUseCase) marketInsight(ctx context.Context, rows []models.MarketRecord) string {
	return uc.insight.Ask(ctx, StageMarketData, promptMarketData, head(rows, uc.insight.rowLimit))
}

type articleBrief struct {
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Sentiment float64 `json:"sentiment"`
}

func (uc *AgentUseCase) newsInsight(ctx context.Context, articles []models.NewsArticle) string {
	if !uc.insight.Enabled() {
		return ""
	}
	briefs := make([]articleBrief, 0, len(articles))
	for _, a := range head(articles, uc.insight.rowLimit) {
		briefs = append(briefs, articleBrief{Title: a.Title, Summary: a.Summary, Sentiment: a.Sentiment})
	}
	return uc.insight.Ask(ctx, StageNews, promptNews, briefs)
}

func (uc *AgentUseCase) filingsInsight(ctx context.Context, filings []models.Filing) string {
	return uc.insight.Ask(ctx, StageSECFilings, promptNews, head(filings, uc.insight.rowLimit))
}

func (uc *AgentUseCase) socialInsight(ctx context.Context, posts []models.SentimentPost) string {
	return uc.insight.Ask(ctx, StageSocialSentiment, promptSocial, head(posts, uc.insight.rowLimit))
}

// macroInsight sends the most recent observations of every series.
func (uc *AgentUseCase) macroInsight(ctx context.Context, snap models.MacroSnapshot) string {
	if !uc.insight.Enabled() {
		return ""
	}
	recent := make(models.MacroSnapshot, len(snap))
	for id, obs := range snap {
		if n := len(obs) - uc.insight.rowLimit; n > 0 {
			obs = obs[n:]
		}
		recent[id] = obs
	}
	return uc.insight.Ask(ctx, StageMacro, promptMacro, recent)
}

func (uc *AgentUseCase) companyInsight(ctx context.Context, ev models.CompanyEvents) string {
	return uc.insight.Ask(ctx, StageCompanyEvent, promptCompany, models.CompanyEvents{
		Pressroom:      head(ev.Pressroom, companyInsightItems),
		Jobs:           head(ev.Jobs, companyInsightItems),
		GithubActivity: head(ev.GithubActivity, companyInsightItems),
	})
}

func (uc *AgentUseCase) startupInsight(ctx context.Context, sig models.StartupSignals) string {
	return uc.insight.Ask(ctx, StageStartupSignals, promptStartup, sig)
}

func (uc *AgentUseCase) nlpInsight(ctx context.Context, text string) string {
	return uc.insight.Ask(ctx, StageNLPEvent, promptNLP, text)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
