package usecase

import (
	"context"
	"encoding/json"

	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
	applogger "MarketPulse/pkg/logger"
)

// Sources bundles the signal adapters.
type Sources struct {
	Market  domsvc.MarketDataSource
	News    domsvc.NewsSource
	Filings domsvc.FilingsSource
	Social  domsvc.SocialSource
	Macro   domsvc.MacroSource
	Company domsvc.CompanySource
	Startup domsvc.StartupSource
	NLP     domsvc.EventExtractor
}

// Defaults fill the inputs an insights request leaves out.
type Defaults struct {
	NewsURLs        []string
	RSSURLs         []string
	CIK             string
	Subreddits      []string
	MacroIndicators []string
	Company         models.CompanyEventRequest
	Startup         models.StartupSignalsRequest
	NLPText         string
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Defaults {
	return Defaults{
		NewsURLs: []string{"https://www.reuters.com/markets/us", "https://www.cnbc.com/finance/"},
		RSSURLs: []string{
			"https://feeds.reuters.com/reuters/businessNews",
			"https://www.cnbc.com/id/100003114/device/rss/rss.html",
		},
		CIK:             "0000320193",
		Subreddits:      []string{"stocks", "wallstreetbets"},
		MacroIndicators: []string{"GDP", "UNRATE", "CPIAUCSL"},
		Company: models.CompanyEventRequest{
			PressroomURL: "https://www.apple.com/newsroom/",
			JobBoardURL:  "https://boards.greenhouse.io/apple",
			GithubOrg:    "apple",
		},
		Startup: models.StartupSignalsRequest{Repo: "openai/gym", Company: "OpenAI"},
		NLPText: "Apple announced a new product in Cupertino.",
	}
}

// Insighter asks the summarizer for a short analyst note about one source's output.
type Insighter struct {
	summarizer domsvc.Summarizer
	rowLimit   int
	logger     *applogger.Logger
}

func NewInsighter(s domsvc.Summarizer, rowLimit int, logger *applogger.Logger) *Insighter {
	if rowLimit <= 0 {
		rowLimit = 10
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Insighter{summarizer: s, rowLimit: rowLimit, logger: logger}
}

// Enabled reports whether a summarizer is configured.
func (i *Insighter) Enabled() bool { return i.summarizer != nil }

// Ask returns the insight for payload, or "" when there is no summarizer or the call fails.
// String payloads are sent verbatim; anything else as JSON.
func (i *Insighter) Ask(ctx context.Context, source, prompt string, payload interface{}) string {
	if i.summarizer == nil {
		return ""
	}
	content, ok := payload.(string)
	if !ok {
		b, err := json.Marshal(payload)
		if err != nil {
			i.logger.Warn("encode insight payload", applogger.String("source", source), applogger.Error(err))
			return ""
		}
		content = string(b)
	}
	out, err := i.summarizer.Summarize(ctx, prompt, content)
	if err != nil {
		i.logger.WithContext(ctx).Warn("insight failed", applogger.String("source", source), applogger.Error(err))
		return ""
	}
	return out
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
