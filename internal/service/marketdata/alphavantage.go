package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/util"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

type avDaily struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
	Note   string                       `json:"Note"`
}

// AlphaVantage reads compact daily series. It needs a per-request API key.
type AlphaVantage struct {
	client  *xhttp.Client
	baseURL string
}

func NewAlphaVantage(client *xhttp.Client, baseURL string) *AlphaVantage {
	if baseURL == "" {
		baseURL = alphaVantageURL
	}
	return &AlphaVantage{client: client, baseURL: baseURL}
}

// DailyBars returns daily closes, oldest first. A response without a daily series
// (throttled, unknown symbol) yields no bars.
func (a *AlphaVantage) DailyBars(ctx context.Context, ticker, apiKey string) ([]bar, error) {
	var resp avDaily
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {ticker},
			"apikey":     {apiKey},
			"outputsize": {"compact"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage %s: %w", ticker, err)
	}

	out := make([]bar, 0, len(resp.Series))
	for day, fields := range resp.Series {
		t, err := time.Parse(util.DateLayout, day)
		if err != nil {
			continue
		}
		c, err := strconv.ParseFloat(fields["4. close"], 64)
		if err != nil {
			continue
		}
		out = append(out, bar{Time: t, Close: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}
