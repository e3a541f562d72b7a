package models

// Verdicts produced by scoring.
const (
	VerdictBuy   = "Buy"
	VerdictWatch = "Watch"
)

// TickerContext is the evidence bundle assembled for one ticker.
type TickerContext struct {
	MarketData MarketRecord     `json:"market_data"`
	News       []NewsArticle    `json:"news"`
	SECFilings []Filing         `json:"sec_filings"`
	Sentiment  []SentimentPost  `json:"sentiment"`
	Macro      MacroSnapshot    `json:"macro"`
	Events     *CompanyEvents   `json:"events"`
	Startup    *StartupSignals  `json:"startup"`
	NLP        *ExtractedEvents `json:"nlp"`
}

// Recommendation is the scored verdict for one ticker.
type Recommendation struct {
	Ticker         string        `json:"ticker"`
	Score          int           `json:"score"`
	Recommendation string        `json:"recommendation"`
	Insight        string        `json:"insight"`
	Signals        TickerContext `json:"signals"`
}

// AgentInsights holds the per-source narrative summaries.
type AgentInsights struct {
	MarketData      string `json:"market_data_insights"`
	News            string `json:"news_insights"`
	SECFilings      string `json:"sec_filings_insights"`
	SocialSentiment string `json:"social_sentiment_insights"`
	Macro           string `json:"macro_insights"`
	CompanyEvents   string `json:"company_events_insights"`
	StartupSignals  string `json:"startup_signals_insights"`
	NLPEvent        string `json:"nlp_event_insights"`
}
