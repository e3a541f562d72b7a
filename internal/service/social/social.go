package social

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/sentiment"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

const (
	redditURL     = "https://www.reddit.com"
	stocktwitsURL = "https://api.stocktwits.com/api/2/streams/symbol/"

	PlatformReddit     = "Reddit"
	PlatformStockTwits = "StockTwits"
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
				Score    int    `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type stocktwitsStream struct {
	Messages []struct {
		Body string `json:"body"`
	} `json:"messages"`
}

// Service reads hot subreddit posts and the StockTwits symbol stream.
type Service struct {
	client        *xhttp.Client
	redditURL     string
	stocktwitsURL string
	limit         int
	logger        *applogger.Logger
}

type Option func(*Service)

func WithRedditURL(u string) Option { return func(s *Service) { s.redditURL = strings.TrimRight(u, "/") } }

func WithStockTwitsURL(u string) Option { return func(s *Service) { s.stocktwitsURL = u } }

func NewService(client *xhttp.Client, logger *applogger.Logger, opts ...Option) *Service {
	s := &Service{
		client:        client,
		redditURL:     redditURL,
		stocktwitsURL: stocktwitsURL,
		limit:         10,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns hot posts for every subreddit followed by the symbol's stream.
// Failing subreddits or a failing stream are skipped; the call fails only when
// every source failed.
func (s *Service) Fetch(ctx context.Context, req models.SocialSentimentRequest) ([]models.SentimentPost, error) {
	var out []models.SentimentPost
	var failed, total int
	var lastErr error

	for _, sub := range req.Subreddits {
		total++
		posts, err := s.hot(ctx, sub)
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("reddit fetch failed", applogger.String("subreddit", sub), applogger.Error(err))
			continue
		}
		out = append(out, posts...)
	}

	if req.Symbol != "" {
		total++
		msgs, err := s.Stream(ctx, req.Symbol)
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("stocktwits fetch failed", applogger.String("symbol", req.Symbol), applogger.Error(err))
		}
		out = append(out, msgs...)
	}

	if total > 0 && failed == total {
		return nil, fmt.Errorf("social: %w", lastErr)
	}
	return out, nil
}

func (s *Service) hot(ctx context.Context, sub string) ([]models.SentimentPost, error) {
	var listing redditListing
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/r/%s/hot.json", s.redditURL, url.PathEscape(sub)),
		QueryParams: map[string][]string{"limit": {fmt.Sprint(s.limit)}},
	}, &listing)
	if err != nil {
		return nil, fmt.Errorf("r/%s: %w", sub, err)
	}

	posts := make([]models.SentimentPost, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		if len(posts) >= s.limit {
			break
		}
		posts = append(posts, models.SentimentPost{
			Platform:  PlatformReddit,
			Subreddit: sub,
			Title:     c.Data.Title,
			Score:     c.Data.Score,
			Sentiment: sentiment.Polarity(c.Data.Title),
		})
	}
	return posts, nil
}

// Stream returns the first messages of the symbol's public StockTwits stream.
func (s *Service) Stream(ctx context.Context, symbol string) ([]models.SentimentPost, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var stream stocktwitsStream
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.stocktwitsURL + url.PathEscape(symbol) + ".json",
	}, &stream)
	if err != nil {
		return nil, fmt.Errorf("stocktwits %s: %w", symbol, err)
	}

	out := make([]models.SentimentPost, 0, len(stream.Messages))
	for _, m := range stream.Messages {
		if len(out) >= s.limit {
			break
		}
		out = append(out, models.SentimentPost{
			Ticker:    symbol,
			Platform:  PlatformStockTwits,
			Symbol:    symbol,
			Body:      m.Body,
			Sentiment: sentiment.Polarity(m.Body),
		})
	}
	return out, nil
}
