package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/queue"

	"github.com/google/uuid"
)

// JobTypeInsightsRun is the queue message type of an asynchronous insights run.
const JobTypeInsightsRun = "insights.run"

// Job sources.
const (
	JobSourceAPI      = "api"
	JobSourceSchedule = "schedule"
	JobSourceKafka    = "kafka"
)

// ErrQueueDisabled is returned by Submit when no queue is configured.
var ErrQueueDisabled = errors.New("job queue is not configured")

// InsightsRunner runs one insights request.
type InsightsRunner interface {
	Run(ctx context.Context, req models.InsightsRequest) (*models.InsightsResponse, error)
}

// JobPayload is the queue message body of an insights run.
type JobPayload struct {
	JobID   string                 `json:"job_id"`
	Request models.InsightsRequest `json:"request"`
}

// JobsUseCase submits insights runs to the queue and tracks their state.
type JobsUseCase struct {
	store  domrepo.JobStore
	queue  queue.Queue
	runner InsightsRunner
	logger *applogger.Logger
	now    func() time.Time
}

func NewJobsUseCase(store domrepo.JobStore, q queue.Queue, runner InsightsRunner, logger *applogger.Logger) *JobsUseCase {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &JobsUseCase{store: store, queue: q, runner: runner, logger: logger, now: time.Now}
}

// Submit records a queued job and enqueues it.
func (uc *JobsUseCase) Submit(ctx context.Context, req models.InsightsRequest, source string) (*models.Job, error) {
	if uc.queue == nil || uc.store == nil {
		return nil, ErrQueueDisabled
	}
	now := uc.now().UTC()
	job := &models.Job{
		ID:        uuid.NewString(),
		State:     models.JobQueued,
		Request:   req,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.store.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := uc.queue.Enqueue(ctx, JobTypeInsightsRun, JobPayload{JobID: job.ID, Request: req}); err != nil {
		uc.fail(ctx, job, err)
		return nil, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	uc.logger.Info("insights job queued",
		applogger.String("job_id", job.ID),
		applogger.String("source", source),
		applogger.Strings("tickers", req.Tickers),
	)
	return job, nil
}

// Get returns the current state of a job.
func (uc *JobsUseCase) Get(ctx context.Context, id string) (*models.Job, error) {
	if uc.store == nil {
		return nil, ErrQueueDisabled
	}
	return uc.store.Get(ctx, id)
}

// Job returns the queue handler that executes submitted runs.
func (uc *JobsUseCase) Job() queue.Job {
	return &insightsJob{uc: uc}
}

func (uc *JobsUseCase) execute(ctx context.Context, p JobPayload) error {
	job, err := uc.store.Get(ctx, p.JobID)
	if err != nil {
		// the record expired or was never written; run anyway so the result is still delivered
		uc.logger.Warn("job record missing", applogger.String("job_id", p.JobID), applogger.Error(err))
		job = &models.Job{ID: p.JobID, Request: p.Request, CreatedAt: uc.now().UTC()}
	}

	job.State = models.JobRunning
	job.Error = ""
	job.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, job); err != nil {
		uc.logger.Warn("save running job", applogger.String("job_id", job.ID), applogger.Error(err))
	}

	resp, err := uc.runner.Run(ctx, p.Request)
	if err != nil {
		uc.fail(ctx, job, err)
		return err
	}

	job.State = models.JobDone
	job.Result = resp
	job.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, job); err != nil {
		return fmt.Errorf("save finished job %s: %w", job.ID, err)
	}
	return nil
}

func (uc *JobsUseCase) fail(ctx context.Context, job *models.Job, cause error) {
	job.State = models.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, job); err != nil {
		uc.logger.Warn("save failed job", applogger.String("job_id", job.ID), applogger.Error(err))
	}
}

type insightsJob struct{ uc *JobsUseCase }

func (j *insightsJob) Name() string { return "insights-runner" }

func (j *insightsJob) Type() string { return JobTypeInsightsRun }

func (j *insightsJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[JobPayload](payload)
	if err != nil {
		return fmt.Errorf("insights job payload: %w", err)
	}
	return j.uc.execute(ctx, *p)
}
