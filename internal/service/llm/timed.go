package llm

import (
	"context"
	"errors"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Provider is a named summarizer backend.
type Provider interface {
	domsvc.Summarizer
	Name() string
}

// Timed bounds every call, records its outcome and wraps it in a span.
type Timed struct {
	next    Provider
	timeout time.Duration
	metrics domrepo.Metrics
}

func NewTimed(next Provider, timeout time.Duration, metrics domrepo.Metrics) *Timed {
	return &Timed{next: next, timeout: timeout, metrics: metrics}
}

func (t *Timed) Summarize(ctx context.Context, instructions, content string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "summarize", attribute.String("provider", t.next.Name()))
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := t.next.Summarize(ctx, instructions, content)
	tracing.End(span, err)

	if t.metrics != nil {
		t.metrics.RecordSummarizer(t.next.Name(), outcome(err), time.Since(start).Seconds())
	}
	return out, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
