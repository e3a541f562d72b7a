package service

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// Summarizer turns a prompt and content into free text. Implementations may fail;
// callers must treat every error as recoverable.
type Summarizer interface {
	Summarize(ctx context.Context, instructions, content string) (string, error)
}

// MarketDataSource loads price history with indicators.
type MarketDataSource interface {
	Fetch(ctx context.Context, req models.MarketDataRequest) ([]models.MarketRecord, error)
}

// NewsSource crawls articles and feeds.
type NewsSource interface {
	Fetch(ctx context.Context, req models.NewsRequest) ([]models.NewsArticle, error)
}

// FilingsSource lists recent regulatory filings.
type FilingsSource interface {
	Fetch(ctx context.Context, req models.SECFilingsRequest) ([]models.Filing, error)
}

// SocialSource reads social mentions.
type SocialSource interface {
	Fetch(ctx context.Context, req models.SocialSentimentRequest) ([]models.SentimentPost, error)
	Stream(ctx context.Context, symbol string) ([]models.SentimentPost, error)
}

// MacroSource loads economic series.
type MacroSource interface {
	Fetch(ctx context.Context, req models.MacroRequest) (models.MacroSnapshot, error)
}

// CompanySource scans company pages and activity.
type CompanySource interface {
	Fetch(ctx context.Context, req models.CompanyEventRequest) (models.CompanyEvents, error)
}

// StartupSource reads startup traction signals.
type StartupSource interface {
	Fetch(ctx context.Context, req models.StartupSignalsRequest) (models.StartupSignals, error)
}

// EventExtractor pulls entities and phrases out of text.
type EventExtractor interface {
	Extract(ctx context.Context, text string) (models.ExtractedEvents, error)
}
