package models

// InsightsRequest triggers the full pipeline.
type InsightsRequest struct {
	Tickers            []string `json:"tickers" validate:"required,min=1,max=50,dive,required,max=12"`
	Period             string   `json:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval           string   `json:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 60m 1h 1d 1wk 1mo"`
	AlphaVantageAPIKey string   `json:"alpha_vantage_api_key,omitempty"`
	URLs               []string `json:"urls,omitempty" validate:"omitempty,dive,url"`
	RSSURLs            []string `json:"rss_urls,omitempty" validate:"omitempty,dive,url"`
	CIK                string   `json:"cik,omitempty"`
	Subreddits         []string `json:"subreddits,omitempty"`
	MacroIndicators    []string `json:"macro_indicators,omitempty"`
	Text               string   `json:"text,omitempty"`
}

// MarketDataRequest fetches price history and indicators.
type MarketDataRequest struct {
	Tickers            []string `json:"tickers" validate:"required,min=1,max=50,dive,required,max=12"`
	Period             string   `json:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval           string   `json:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 60m 1h 1d 1wk 1mo"`
	AlphaVantageAPIKey string   `json:"alpha_vantage_api_key,omitempty"`
}

// NewsRequest crawls seed pages and feeds.
type NewsRequest struct {
	URLs    []string `json:"urls" validate:"required,min=1,dive,url"`
	RSSURLs []string `json:"rss_urls" validate:"omitempty,dive,url"`
}

// SECFilingsRequest fetches recent filings for a CIK.
type SECFilingsRequest struct {
	CIK string `json:"cik" validate:"required,numeric,max=10"`
}

// SocialSentimentRequest reads social mentions.
type SocialSentimentRequest struct {
	Subreddits []string `json:"subreddits" default:"[\"stocks\",\"wallstreetbets\"]" validate:"max=10,dive,required,alphanum"`
	Symbol     string   `json:"symbol" default:"AAPL" validate:"max=12"`
}

// MacroRequest fetches economic series.
type MacroRequest struct {
	MacroIndicators []string `json:"macro_indicators" default:"[\"GDP\",\"UNRATE\",\"CPIAUCSL\"]" validate:"max=20,dive,required,alphanum"`
}

// CompanyEventRequest scans company-owned pages.
type CompanyEventRequest struct {
	PressroomURL string `json:"pressroom_url" default:"https://www.apple.com/newsroom/" validate:"url"`
	JobBoardURL  string `json:"job_board_url" default:"https://boards.greenhouse.io/apple" validate:"url"`
	GithubOrg    string `json:"github_org" default:"apple" validate:"max=100"`
}

// StartupSignalsRequest reads early-stage traction signals.
type StartupSignalsRequest struct {
	Repo    string `json:"repo" default:"openai/gym" validate:"contains=/"`
	Company string `json:"company" default:"OpenAI" validate:"max=100"`
}

// NLPEventRequest extracts events from text.
type NLPEventRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

// CombinedSentimentRequest joins stream messages and news per ticker.
type CombinedSentimentRequest struct {
	Tickers []string `json:"tickers" validate:"required,min=1,max=50,dive,required,max=12"`
	URLs    []string `json:"urls,omitempty" validate:"omitempty,dive,url"`
	RSSURLs []string `json:"rss_urls,omitempty" validate:"omitempty,dive,url"`
}

// HistoryQuery reads stored recommendations for a ticker.
type HistoryQuery struct {
	Ticker string `param:"ticker" validate:"required,max=12"`
	Limit  int    `query:"limit" default:"20" validate:"min=1,max=500"`
}
