package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const probeTimeout = 5 * time.Second

// Health runs every probe concurrently. The status stays "ok"; callers read the checks.
func (h *InsightsHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	checks := make(map[string]bool, len(h.probes))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, probe := range h.probes {
		wg.Add(1)
		go func(name string, probe Probe) {
			defer wg.Done()
			ok := safeProbe(ctx, probe)
			mu.Lock()
			checks[name] = ok
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()

	var failed []string
	for name, ok := range checks {
		if !ok {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	h.logger.Info("health checked", applogger.Strings("failed", failed))
	return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Checks: checks})
}

func safeProbe(ctx context.Context, p Probe) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return p(ctx)
}
