package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"MarketPulse/internal/service/metrics"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// runEndpoint binds and validates Req, then answers with the fixture when ?mock=1
// or with the result of call. Adapter failures become 502 ERR_UPSTREAM.
func runEndpoint[Req any, Resp any](
	h *InsightsHandler,
	endpoint string,
	mock func() Resp,
	call func(ctx context.Context, req Req) (Resp, error),
) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		isMock := c.QueryParam("mock") == "1"
		defer func() {
			metrics.AgentLatency.WithLabelValues(endpoint, strconv.FormatBool(isMock)).Observe(time.Since(start).Seconds())
		}()

		req := new(Req)
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
		log := h.logger.WithContext(c.Request().Context()).With(
			applogger.String("endpoint", endpoint),
			applogger.String("remote", c.RealIP()),
		)
		if isMock {
			log.Debug("serving mock response")
			return c.JSON(http.StatusOK, mock())
		}

		resp, err := call(c.Request().Context(), *req)
		if err != nil {
			metrics.AgentErrors.WithLabelValues(endpoint).Inc()
			log.Error("agent run failed", applogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.UpstreamError(endpoint+" failed").WithError(err))
		}
		log.Info("agent run completed", applogger.Duration("latency_ms", time.Since(start)))
		return c.JSON(http.StatusOK, resp)
	}
}

// Insights runs the full pipeline.
func (h *InsightsHandler) Insights(c echo.Context) error {
	return runEndpoint(h, "insights", usecase.MockInsightsResponse, h.runner.Run)(c)
}

func (h *InsightsHandler) MarketData(c echo.Context) error {
	return runEndpoint(h, "marketdata", usecase.MockMarketData, h.agents.MarketData)(c)
}

func (h *InsightsHandler) News(c echo.Context) error {
	return runEndpoint(h, "news", usecase.MockNews, h.agents.News)(c)
}

func (h *InsightsHandler) SECFilings(c echo.Context) error {
	return runEndpoint(h, "secfilings", usecase.MockSECFilings, h.agents.SECFilings)(c)
}

func (h *InsightsHandler) SocialSentiment(c echo.Context) error {
	return runEndpoint(h, "socialsentiment", usecase.MockSocialSentiment, h.agents.SocialSentiment)(c)
}

func (h *InsightsHandler) Macro(c echo.Context) error {
	return runEndpoint(h, "macro", usecase.MockMacro, h.agents.Macro)(c)
}

func (h *InsightsHandler) CompanyEvents(c echo.Context) error {
	return runEndpoint(h, "companyevent", usecase.MockCompanyEvents, h.agents.CompanyEvents)(c)
}

func (h *InsightsHandler) StartupSignals(c echo.Context) error {
	return runEndpoint(h, "startupsignals", usecase.MockStartupSignals, h.agents.StartupSignals)(c)
}

func (h *InsightsHandler) NLPEvent(c echo.Context) error {
	return runEndpoint(h, "nlpevent", usecase.MockNLPEvent, h.agents.NLPEvent)(c)
}

func (h *InsightsHandler) CombinedSentiment(c echo.Context) error {
	return runEndpoint(h, "combinedsentiment", usecase.MockCombinedSentiment, h.agents.CombinedSentiment)(c)
}
