package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	applogger "MarketPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

const scheduleLockKey = "schedule:insights"

// Locker grants a lease to at most one holder at a time.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Scheduler enqueues an insights run for a fixed ticker list on a cron schedule.
// With a shared Locker, only one replica enqueues per tick.
type Scheduler struct {
	cron    *cron.Cron
	expr    string
	request models.InsightsRequest
	jobs    Submitter
	locker  Locker
	lease   time.Duration
	logger  *applogger.Logger
}

// NewScheduler validates the cron expression (standard five-field cron or an @every/@hourly descriptor).
func NewScheduler(expr string, tickers []string, jobs Submitter, locker Locker, logger *applogger.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = applogger.Nop()
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("schedule needs at least one ticker")
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	return &Scheduler{
		cron:    cron.New(),
		expr:    expr,
		request: models.InsightsRequest{Tickers: tickers, Period: "1y", Interval: "1d"},
		jobs:    jobs,
		locker:  locker,
		lease:   30 * time.Second,
		logger:  logger,
	}, nil
}

// Start registers the schedule and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.expr, func() { s.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("schedule insights: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.String("cron", s.expr), applogger.Strings("tickers", s.request.Tickers))
	return nil
}

// Stop waits for a running tick to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick enqueues one run unless another replica holds the lease.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, scheduleLockKey, s.lease)
		if err != nil {
			s.logger.Warn("schedule lock failed", applogger.Error(err))
			return
		}
		if !ok {
			s.logger.Debug("schedule tick skipped, lease held elsewhere")
			return
		}
	}
	job, err := s.jobs.Submit(ctx, s.request, JobSourceSchedule)
	if err != nil {
		s.logger.Error("scheduled run not queued", applogger.Error(err))
		return
	}
	s.logger.Info("scheduled run queued", applogger.String("job_id", job.ID))
}
