package news

import (
	"context"
	"fmt"

	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/service/llm"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/pkg/feed"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// Service gathers articles from RSS/Atom feeds and crawled seed pages.
type Service struct {
	client     *xhttp.Client
	crawler    *Crawler
	extractor  *Extractor
	summarizer domsvc.Summarizer
	logger     *applogger.Logger
}

func NewService(client *xhttp.Client, crawler *Crawler, summarizer domsvc.Summarizer, logger *applogger.Logger) *Service {
	return &Service{
		client:     client,
		crawler:    crawler,
		extractor:  NewExtractor(client),
		summarizer: summarizer,
		logger:     logger,
	}
}

// Fetch returns feed entries first, then articles parsed from the crawled seeds.
// Individual feed or page failures are logged and skipped.
func (s *Service) Fetch(ctx context.Context, req models.NewsRequest) ([]models.NewsArticle, error) {
	var out []models.NewsArticle

	for _, feedURL := range req.RSSURLs {
		items, err := s.feed(ctx, feedURL)
		if err != nil {
			s.logger.Warn("feed fetch failed", applogger.String("url", feedURL), applogger.Error(err))
			continue
		}
		for _, it := range items {
			text := plainText(it.Summary)
			out = append(out, models.NewsArticle{
				URL:         it.Link,
				Title:       it.Title,
				Text:        text,
				PublishDate: it.Published,
				Sentiment:   sentiment.Polarity(text),
				Summary:     llm.Brief(ctx, s.summarizer, text),
			})
		}
	}

	for _, seed := range req.URLs {
		links, err := s.crawler.Links(ctx, seed)
		if err != nil {
			s.logger.Warn("crawl failed", applogger.String("url", seed), applogger.Error(err))
			continue
		}
		for _, link := range links {
			page, err := s.extractor.Extract(ctx, link)
			if err != nil {
				s.logger.Warn("article parse failed", applogger.String("url", link), applogger.Error(err))
				continue
			}
			out = append(out, models.NewsArticle{
				URL:         link,
				Title:       page.Title,
				Text:        page.Text,
				PublishDate: page.PublishDate,
				Sentiment:   sentiment.Polarity(page.Text),
				Summary:     llm.Brief(ctx, s.summarizer, page.Text),
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	s.logger.Info("news fetched", applogger.Int("articles", len(out)),
		applogger.Int("feeds", len(req.RSSURLs)), applogger.Int("seeds", len(req.URLs)))
	return out, nil
}

func (s *Service) feed(ctx context.Context, feedURL string) ([]feed.Item, error) {
	var raw []byte
	if err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     feedURL,
		Headers: map[string]string{"Accept": "application/rss+xml, application/atom+xml, text/xml"},
	}, &raw); err != nil {
		return nil, err
	}
	items, err := feed.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedURL, err)
	}
	return items, nil
}
