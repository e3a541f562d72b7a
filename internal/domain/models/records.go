package models

// MarketRecord is one price row with derived indicators.
type MarketRecord struct {
	Date           string `json:"date"`
	Ticker         string `json:"ticker,omitempty"`
	Close          Metric `json:"close"`
	SMA20          Metric `json:"SMA_20"`
	RSI14          Metric `json:"RSI_14"`
	Recommendation string `json:"recommendation,omitempty"`
}

// NewsArticle is a crawled or syndicated article.
type NewsArticle struct {
	Ticker      string  `json:"ticker,omitempty"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Text        string  `json:"text,omitempty"`
	PublishDate string  `json:"publish_date,omitempty"`
	Sentiment   float64 `json:"sentiment"`
	Summary     string  `json:"summary,omitempty"`
}

// Filing is a regulatory filing entry.
type Filing struct {
	Ticker  string `json:"ticker,omitempty"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Date    string `json:"date"`
	Summary string `json:"summary,omitempty"`
}

// SentimentPost is a social mention scored for polarity.
type SentimentPost struct {
	Ticker    string  `json:"ticker,omitempty"`
	Platform  string  `json:"platform,omitempty"`
	Subreddit string  `json:"subreddit,omitempty"`
	Symbol    string  `json:"symbol,omitempty"`
	Title     string  `json:"title,omitempty"`
	Body      string  `json:"body,omitempty"`
	Score     int     `json:"score,omitempty"`
	Sentiment float64 `json:"sentiment"`
}

// MacroObservation is a single dated value of an economic series.
type MacroObservation struct {
	Date  string `json:"date"`
	Value Metric `json:"value"`
}

// MacroSnapshot maps indicator id (GDP, UNRATE, ...) to its observations.
type MacroSnapshot map[string][]MacroObservation

// CompanyEvents collects press, hiring and engineering activity for a company.
type CompanyEvents struct {
	Pressroom      []string `json:"pressroom"`
	Jobs           []string `json:"jobs"`
	GithubActivity []string `json:"github_activity"`
}

// RepoStars is the stargazer count of a repository; Stars is nil when unknown.
type RepoStars struct {
	Repo  string `json:"repo"`
	Stars *int   `json:"stars"`
}

// StartupSignals collects early-stage traction signals.
type StartupSignals struct {
	GithubStars RepoStars `json:"github_stars"`
	FundingNews []string  `json:"funding_news"`
	JobPostings []string  `json:"job_postings"`
}

// Entity is a named entity found in text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ExtractedEvents is the output of event extraction over free text.
type ExtractedEvents struct {
	Entities   []Entity `json:"entities"`
	KeyPhrases []string `json:"key_phrases"`
	Sentiment  float64  `json:"sentiment"`
}

// CombinedSentiment groups stream messages and matching news for one ticker.
type CombinedSentiment struct {
	StockTwits []SentimentPost `json:"stocktwits"`
	News       []NewsArticle   `json:"news"`
}
