package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
)

// Submitter enqueues insights runs.
type Submitter interface {
	Submit(ctx context.Context, req models.InsightsRequest, source string) (*models.Job, error)
}

// KafkaRequestsHandler turns insights requests read from Kafka into queued jobs.
// Message schema: {"tickers":[...], "period":"1y", "interval":"1d"}.
type KafkaRequestsHandler struct {
	topic   string
	jobs    Submitter
	metrics domrepo.Metrics
}

func NewKafkaRequestsHandler(topic string, jobs Submitter, metrics domrepo.Metrics) *KafkaRequestsHandler {
	return &KafkaRequestsHandler{topic: topic, jobs: jobs, metrics: metrics}
}

func (h *KafkaRequestsHandler) Topic() string { return h.topic }

func (h *KafkaRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.InsightsRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.recordError("consumer_unmarshal")
		return &pkgkafka.HookError{Code: "ERR_DECODE", Err: err}
	}
	if err := xhttp.DefaultAndValidate(ctx, &req); err != nil {
		h.recordError("consumer_validate")
		return &pkgkafka.HookError{Code: "ERR_VALIDATION", Err: err}
	}
	if _, err := h.jobs.Submit(ctx, req, JobSourceKafka); err != nil {
		h.recordError("consumer_submit")
		return fmt.Errorf("submit kafka request: %w", err)
	}
	return nil
}

func (h *KafkaRequestsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*KafkaRequestsHandler)(nil)
