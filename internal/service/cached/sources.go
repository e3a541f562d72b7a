// Package cached memoizes source adapter results in the layered cache.
package cached

import (
	"context"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/service/metrics"
	"MarketPulse/pkg/cache"
)

// Source names used for cache keys and metrics.
const (
	SourceMarketData = "market_data"
	SourceNews       = "news"
	SourceFilings    = "sec_filings"
	SourceSocial     = "social_sentiment"
	SourceStream     = "stocktwits"
	SourceMacro      = "macro"
	SourceCompany    = "company_events"
	SourceStartup    = "startup_signals"
)

type base struct {
	c   cache.Service
	ttl time.Duration
}

func remember[T any](ctx context.Context, b base, source string, req interface{}, load func(context.Context) (T, error)) (T, error) {
	v, hit, err := cache.Remember(ctx, b.c, cache.RequestKey("src:"+source, req), b.ttl, load)
	if b.c != nil && err == nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		metrics.CacheLookups.WithLabelValues(source, result).Inc()
	}
	return v, err
}

// MarketData caches a MarketDataSource.
type MarketData struct {
	base
	next domsvc.MarketDataSource
}

func NewMarketData(next domsvc.MarketDataSource, c cache.Service, ttl time.Duration) *MarketData {
	return &MarketData{base: base{c, ttl}, next: next}
}

func (s *MarketData) Fetch(ctx context.Context, req models.MarketDataRequest) ([]models.MarketRecord, error) {
	// the key never carries a credential
	key := req
	key.AlphaVantageAPIKey = ""
	key.Tickers = upper(req.Tickers)
	return remember(ctx, s.base, SourceMarketData, key, func(ctx context.Context) ([]models.MarketRecord, error) {
		return s.next.Fetch(ctx, req)
	})
}

// News caches a NewsSource.
type News struct {
	base
	next domsvc.NewsSource
}

func NewNews(next domsvc.NewsSource, c cache.Service, ttl time.Duration) *News {
	return &News{base: base{c, ttl}, next: next}
}

func (s *News) Fetch(ctx context.Context, req models.NewsRequest) ([]models.NewsArticle, error) {
	return remember(ctx, s.base, SourceNews, req, func(ctx context.Context) ([]models.NewsArticle, error) {
		return s.next.Fetch(ctx, req)
	})
}

// Filings caches a FilingsSource.
type Filings struct {
	base
	next domsvc.FilingsSource
}

func NewFilings(next domsvc.FilingsSource, c cache.Service, ttl time.Duration) *Filings {
	return &Filings{base: base{c, ttl}, next: next}
}

func (s *Filings) Fetch(ctx context.Context, req models.SECFilingsRequest) ([]models.Filing, error) {
	return remember(ctx, s.base, SourceFilings, req, func(ctx context.Context) ([]models.Filing, error) {
		return s.next.Fetch(ctx, req)
	})
}

// Social caches a SocialSource.
type Social struct {
	base
	next domsvc.SocialSource
}

func NewSocial(next domsvc.SocialSource, c cache.Service, ttl time.Duration) *Social {
	return &Social{base: base{c, ttl}, next: next}
}

func (s *Social) Fetch(ctx context.Context, req models.SocialSentimentRequest) ([]models.SentimentPost, error) {
	return remember(ctx, s.base, SourceSocial, req, func(ctx context.Context) ([]models.SentimentPost, error) {
		return s.next.Fetch(ctx, req)
	})
}

func (s *Social) Stream(ctx context.Context, symbol string) ([]models.SentimentPost, error) {
	return remember(ctx, s.base, SourceStream, strings.ToUpper(symbol), func(ctx context.Context) ([]models.SentimentPost, error) {
		return s.next.Stream(ctx, symbol)
	})
}

// Macro caches a MacroSource.
type Macro struct {
	base
	next domsvc.MacroSource
}

func NewMacro(next domsvc.MacroSource, c cache.Service, ttl time.Duration) *Macro {
	return &Macro{base: base{c, ttl}, next: next}
}

func (s *Macro) Fetch(ctx context.Context, req models.MacroRequest) (models.MacroSnapshot, error) {
	return remember(ctx, s.base, SourceMacro, req, func(ctx context.Context) (models.MacroSnapshot, error) {
		return s.next.Fetch(ctx, req)
	})
}

// Company caches a CompanySource.
type Company struct {
	base
	next domsvc.CompanySource
}

func NewCompany(next domsvc.CompanySource, c cache.Service, ttl time.Duration) *Company {
	return &Company{base: base{c, ttl}, next: next}
}

func (s *Company) Fetch(ctx context.Context, req models.CompanyEventRequest) (models.CompanyEvents, error) {
	return remember(ctx, s.base, SourceCompany, req, func(ctx context.Context) (models.CompanyEvents, error) {
		return s.next.Fetch(ctx, req)
	})
}

// Startup caches a StartupSource.
type Startup struct {
	base
	next domsvc.StartupSource
}

func NewStartup(next domsvc.StartupSource, c cache.Service, ttl time.Duration) *Startup {
	return &Startup{base: base{c, ttl}, next: next}
}

func (s *Startup) Fetch(ctx context.Context, req models.StartupSignalsRequest) (models.StartupSignals, error) {
	return remember(ctx, s.base, SourceStartup, req, func(ctx context.Context) (models.StartupSignals, error) {
		return s.next.Fetch(ctx, req)
	})
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}
