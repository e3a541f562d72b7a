package macro

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

const fredURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

// FRED downloads series as CSV from the public graph endpoint.
type FRED struct {
	client  *xhttp.Client
	baseURL string
	logger  *applogger.Logger
}

func NewFRED(client *xhttp.Client, baseURL string, logger *applogger.Logger) *FRED {
	if baseURL == "" {
		baseURL = fredURL
	}
	return &FRED{client: client, baseURL: baseURL, logger: logger}
}

// Fetch returns every requested series keyed by its id. A series that fails to
// load is left out; the call fails only when none loaded.
func (f *FRED) Fetch(ctx context.Context, req models.MacroRequest) (models.MacroSnapshot, error) {
	out := make(models.MacroSnapshot, len(req.MacroIndicators))
	var lastErr error
	for _, id := range req.MacroIndicators {
		obs, err := f.series(ctx, id)
		if err != nil {
			lastErr = err
			f.logger.Warn("fred fetch failed", applogger.String("series", id), applogger.Error(err))
			continue
		}
		out[id] = obs
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("macro: %w", lastErr)
	}
	return out, nil
}

func (f *FRED) series(ctx context.Context, id string) ([]models.MacroObservation, error) {
	var raw []byte
	if err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         f.baseURL,
		QueryParams: map[string][]string{"id": {id}},
	}, &raw); err != nil {
		return nil, fmt.Errorf("series %s: %w", id, err)
	}
	return ParseCSV(raw)
}

// ParseCSV reads a two-column date,value export. The header row is skipped and
// missing values ("." in FRED exports) become null metrics.
func ParseCSV(raw []byte) ([]models.MacroObservation, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || !strings.Contains(strings.ToLower(header[0]), "date") {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var out []models.MacroObservation
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) < 2 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out = append(out, models.MacroObservation{
			Date:  strings.TrimSpace(rec[0]),
			Value: models.ParseMetric(strings.TrimSpace(rec[1])),
		})
	}
	return out, nil
}
