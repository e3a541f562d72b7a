package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/handler/api"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/queue"
)

// Tracing marks that the global tracer provider was installed.
type Tracing struct {
	Enabled bool
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	http      *xhttp.Server
	runner    usecase.InsightsRunner
	queue     queue.Queue
	scheduler *usecase.Scheduler
	consumer  *pkgkafka.Consumer
	hub       *api.Hub
	cleanup   func()
}

// Option attaches an optional component.
type Option func(*App)

func WithHTTP(s *xhttp.Server) Option { return func(a *App) { a.http = s } }

func WithRunner(r usecase.InsightsRunner) Option { return func(a *App) { a.runner = r } }

func WithQueue(q queue.Queue) Option { return func(a *App) { a.queue = q } }

func WithScheduler(s *usecase.Scheduler) Option { return func(a *App) { a.scheduler = s } }

func WithConsumer(c *pkgkafka.Consumer) Option { return func(a *App) { a.consumer = c } }

func WithHub(h *api.Hub) Option { return func(a *App) { a.hub = h } }

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, opts ...Option) *App {
	a := &App{cfg: cfg, logger: l}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetCleanup installs the resource release hook run last on shutdown.
func (a *App) SetCleanup(f func()) { a.cleanup = f }

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.logger }

// Run starts the background workers and the HTTP server, then blocks until
// ctx is done or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.release()
			return fmt.Errorf("start queue: %w", err)
		}
		a.logger.Info("job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			a.logger.Error("scheduler start error", applogger.Error(err))
		} else {
			a.logger.Info("scheduler started",
				applogger.String("cron", a.cfg.Schedule.Cron),
				applogger.Strings("tickers", a.cfg.Schedule.Tickers))
		}
	}

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.RequestsTopic))
	}

	if err := a.http.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		_ = a.shutdown(context.Background())
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown(context.Background())
}

// RunOnce executes a single insights run without starting any listener.
func (a *App) RunOnce(ctx context.Context, req models.InsightsRequest) (*models.InsightsResponse, error) {
	defer a.release()
	if a.runner == nil {
		return nil, fmt.Errorf("no insights runner configured")
	}
	return a.runner.Run(ctx, req)
}

// shutdown stops intake first, then drains workers, then releases clients.
func (a *App) shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.http != nil {
		if err := a.http.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.logger.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	a.release()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) release() {
	a.logger.DetachDigest()
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}
