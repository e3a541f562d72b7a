package marketdata

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/services/features"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// Service builds indicator rows per ticker from Yahoo, optionally merged with Alpha Vantage.
type Service struct {
	yahoo      *Yahoo
	av         *AlphaVantage
	defaultKey string
	logger     *applogger.Logger
}

func NewService(yahoo *Yahoo, av *AlphaVantage, defaultAVKey string, logger *applogger.Logger) *Service {
	return &Service{yahoo: yahoo, av: av, defaultKey: defaultAVKey, logger: logger}
}

// Fetch returns rows for every ticker in request order. A ticker whose sources all
// fail is skipped and logged; the call fails only when no ticker produced data
// and at least one source returned an error.
func (s *Service) Fetch(ctx context.Context, req models.MarketDataRequest) ([]models.MarketRecord, error) {
	key := req.AlphaVantageAPIKey
	if key == "" {
		key = s.defaultKey
	}

	var out []models.MarketRecord
	var lastErr error
	for _, ticker := range util.NormalizeTickers(req.Tickers) {
		bars, err := s.yahoo.Bars(ctx, ticker, req.Period, req.Interval)
		if err != nil {
			lastErr = err
			s.logger.Warn("yahoo fetch failed", applogger.String("ticker", ticker), applogger.Error(err))
		}
		if key != "" && s.av != nil {
			avBars, err := s.av.DailyBars(ctx, ticker, key)
			if err != nil {
				s.logger.Warn("alpha vantage fetch failed", applogger.String("ticker", ticker), applogger.Error(err))
			} else {
				bars = mergeBars(bars, avBars)
			}
		}
		if len(bars) == 0 {
			s.logger.Warn("no market data", applogger.String("ticker", ticker))
			continue
		}
		out = append(out, BuildRecords(ticker, req.Interval, bars)...)
	}

	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("market data: %w", lastErr)
	}
	return out, nil
}

// mergeBars unions two series by timestamp, keeping a's value on collisions.
func mergeBars(a, b []bar) []bar {
	seen := make(map[int64]struct{}, len(a))
	out := make([]bar, 0, len(a)+len(b))
	for _, x := range a {
		seen[dayKey(x.Time)] = struct{}{}
		out = append(out, x)
	}
	for _, x := range b {
		if _, ok := seen[dayKey(x.Time)]; ok {
			continue
		}
		out = append(out, x)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func dayKey(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// BuildRecords attaches SMA_20, RSI_14 and the RSI call to each bar.
func BuildRecords(ticker, interval string, bars []bar) []models.MarketRecord {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	sma := features.RollingMean(closes, features.SMAWindow)
	rsi := features.RSI(closes, features.RSIWindow)

	intraday := strings.HasSuffix(interval, "m") || strings.HasSuffix(interval, "h")
	out := make([]models.MarketRecord, len(bars))
	for i, b := range bars {
		date := util.Day(b.Time)
		if intraday {
			date = b.Time.UTC().Format(time.RFC3339)
		}
		out[i] = models.MarketRecord{
			Date:           date,
			Ticker:         ticker,
			Close:          models.Num(b.Close),
			SMA20:          metric(sma[i]),
			RSI14:          metric(rsi[i]),
			Recommendation: features.RSISignal(rsi[i]),
		}
	}
	return out
}

func metric(v float64) models.Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.NullMetric()
	}
	return models.Num(v)
}
