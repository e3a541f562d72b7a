package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	xhttp "MarketPulse/pkg/http"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// bar is one closing observation.
type bar struct {
	Time  time.Time
	Close float64
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Yahoo reads price history from the public chart API.
type Yahoo struct {
	client  *xhttp.Client
	baseURL string
}

func NewYahoo(client *xhttp.Client, baseURL string) *Yahoo {
	if baseURL == "" {
		baseURL = yahooChartURL
	}
	return &Yahoo{client: client, baseURL: baseURL}
}

// Bars returns closes for ticker over period at interval, oldest first. Null closes are skipped.
func (y *Yahoo) Bars(ctx context.Context, ticker, period, interval string) ([]bar, error) {
	var resp yahooChart
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    y.baseURL + url.PathEscape(ticker),
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {interval},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := resp.Chart.Result[0]
	closes := res.Indicators.Quote[0].Close
	out := make([]bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		out = append(out, bar{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return out, nil
}
