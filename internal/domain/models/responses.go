package models

import "time"

// StatusSuccess marks a completed run.
const StatusSuccess = "success"

// InsightsResponse is the result of a full pipeline run.
type InsightsResponse struct {
	Status string            `json:"status"`
	Result []Recommendation  `json:"result"`
	Errors map[string]string `json:"errors,omitempty"`
	AgentInsights
}

// MarketDataResponse is the result of a market data run.
type MarketDataResponse struct {
	Status   string         `json:"status"`
	Result   []MarketRecord `json:"result"`
	Insights string         `json:"market_data_insights"`
}

// NewsResponse is the result of a news run.
type NewsResponse struct {
	Status   string        `json:"status"`
	Result   []NewsArticle `json:"result"`
	Insights string        `json:"news_insights"`
}

// SECFilingsResponse is the result of a filings run.
type SECFilingsResponse struct {
	Status   string   `json:"status"`
	Result   []Filing `json:"result"`
	Insights string   `json:"sec_filings_insights"`
}

// SocialSentimentResponse is the result of a social run.
type SocialSentimentResponse struct {
	Status   string          `json:"status"`
	Result   []SentimentPost `json:"result"`
	Insights string          `json:"social_sentiment_insights"`
}

// MacroResponse is the result of a macro run.
type MacroResponse struct {
	Status   string        `json:"status"`
	Result   MacroSnapshot `json:"result"`
	Insights string        `json:"macro_insights"`
}

// CompanyEventResponse is the result of a company events run.
type CompanyEventResponse struct {
	Status   string        `json:"status"`
	Result   CompanyEvents `json:"result"`
	Insights string        `json:"company_events_insights"`
}

// StartupSignalsResponse is the result of a startup signals run.
type StartupSignalsResponse struct {
	Status   string         `json:"status"`
	Result   StartupSignals `json:"result"`
	Insights string         `json:"startup_signals_insights"`
}

// NLPEventResponse is the result of an extraction run.
type NLPEventResponse struct {
	Status   string          `json:"status"`
	Result   ExtractedEvents `json:"result"`
	Insights string          `json:"nlp_event_insights"`
}

// CombinedSentimentResponse is the result of a combined sentiment run.
type CombinedSentimentResponse struct {
	Status string                       `json:"status"`
	Result map[string]CombinedSentiment `json:"result"`
}

// HealthResponse reports dependency readiness.
type HealthResponse struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
}

// StoredRecommendation is a persisted verdict.
type StoredRecommendation struct {
	RunID          string    `json:"run_id"`
	Ticker         string    `json:"ticker"`
	Score          int       `json:"score"`
	Recommendation string    `json:"recommendation"`
	Insight        string    `json:"insight"`
	CreatedAt      time.Time `json:"created_at"`
}
