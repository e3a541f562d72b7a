package filings

import (
	"context"
	"fmt"
	"strconv"

	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/service/llm"
	"MarketPulse/pkg/feed"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

const edgarURL = "https://www.sec.gov/cgi-bin/browse-edgar"

// DefaultForms are the filing types listed per company.
var DefaultForms = []string{"10-K", "10-Q", "8-K", "4"}

// EDGAR lists recent filings from the company browse atom feed.
type EDGAR struct {
	client     *xhttp.Client
	baseURL    string
	userAgent  string
	forms      []string
	count      int
	summarizer domsvc.Summarizer
	logger     *applogger.Logger
}

func NewEDGAR(client *xhttp.Client, baseURL, userAgent string, summarizer domsvc.Summarizer, logger *applogger.Logger) *EDGAR {
	if baseURL == "" {
		baseURL = edgarURL
	}
	return &EDGAR{
		client:     client,
		baseURL:    baseURL,
		userAgent:  userAgent,
		forms:      DefaultForms,
		count:      5,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Fetch returns up to count filings per form type, in form order. A form whose feed
// fails is skipped; the call fails only when every form failed.
func (e *EDGAR) Fetch(ctx context.Context, req models.SECFilingsRequest) ([]models.Filing, error) {
	var out []models.Filing
	var failed int
	var lastErr error
	for _, form := range e.forms {
		items, err := e.list(ctx, req.CIK, form)
		if err != nil {
			failed++
			lastErr = err
			e.logger.Warn("edgar fetch failed", applogger.String("cik", req.CIK),
				applogger.String("form", form), applogger.Error(err))
			continue
		}
		for _, it := range items {
			out = append(out, models.Filing{
				Type:    form,
				Title:   it.Title,
				Link:    it.Link,
				Date:    it.Published,
				Summary: llm.Brief(ctx, e.summarizer, it.Summary),
			})
		}
	}
	if failed == len(e.forms) && lastErr != nil {
		return nil, fmt.Errorf("edgar %s: %w", req.CIK, lastErr)
	}
	return out, nil
}

func (e *EDGAR) list(ctx context.Context, cik, form string) ([]feed.Item, error) {
	headers := map[string]string{"Accept": "application/atom+xml"}
	if e.userAgent != "" {
		headers["User-Agent"] = e.userAgent
	}

	var raw []byte
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     e.baseURL,
		Headers: headers,
		QueryParams: map[string][]string{
			"action": {"getcompany"},
			"CIK":    {cik},
			"type":   {form},
			"count":  {strconv.Itoa(e.count)},
			"output": {"atom"},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	items, err := feed.Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(items) > e.count {
		items = items[:e.count]
	}
	return items, nil
}
