package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config controls span export.
type Config struct {
	Enabled     bool
	ServiceName string
	// Output is stdout, stderr or a file path.
	Output string
}

var (
	mu       sync.RWMutex
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
)

// Init installs a global tracer provider that writes spans through the stdout exporter.
// A disabled config leaves the no-op tracer in place.
func Init(cfg Config) error {
	if !cfg.Enabled {
		return nil
	}
	w, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("stdouttrace: %w", err)
	}
	name := cfg.ServiceName
	if name == "" {
		name = "marketpulse"
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", name)),
	)
	if err != nil {
		return fmt.Errorf("resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mu.Lock()
	provider = tp
	tracer = tp.Tracer(name)
	mu.Unlock()
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	tp := provider
	mu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// StartSpan starts a span when tracing is enabled, otherwise returns the context's current span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IDs returns the trace and span ids active in ctx.
func IDs(ctx context.Context) (traceID, spanID string, ok bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

// End records err on span (if any) and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

func openOutput(out string) (io.Writer, error) {
	switch out {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace output: %w", err)
		}
		return f, nil
	}
}
