package api

import (
	"errors"
	"net/http"
	"strings"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/repository"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SubmitJob queues an insights run and answers 202 with its id.
func (h *InsightsHandler) SubmitJob(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("job queue is not configured"))
	}
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	job, err := h.jobs.Submit(c.Request().Context(), *req, usecase.JobSourceAPI)
	if err != nil {
		h.logger.WithContext(c.Request().Context()).Error("submit job failed", applogger.Error(err))
		if errors.Is(err, usecase.ErrQueueDisabled) {
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("job queue is not configured"))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not queue job").WithError(err))
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": string(job.State), "job_id": job.ID})
}

// GetJob returns the state of a job, with the result once it is done.
func (h *InsightsHandler) GetJob(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("job queue is not configured"))
	}
	id := strings.TrimSpace(c.Param("id"))
	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("job %s not found", id))
		}
		h.logger.WithContext(c.Request().Context()).Error("load job failed", applogger.String("job_id", id), applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load job").WithError(err))
	}
	return xhttp.SuccessResponse(c, job)
}

// History lists stored recommendations for a ticker, newest first.
func (h *InsightsHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("recommendation store is not configured"))
	}
	q := &models.HistoryQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.history.History(c.Request().Context(), strings.ToUpper(q.Ticker), q.Limit)
	if err != nil {
		h.logger.WithContext(c.Request().Context()).Error("history query failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("history query failed").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
