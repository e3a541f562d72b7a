package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// RecommendationStore persists scored runs and market rows.
type RecommendationStore interface {
	Init(ctx context.Context) error // ensure tables
	StoreRun(ctx context.Context, runID string, recs []models.Recommendation) error
	StoreMarketData(ctx context.Context, rows []models.MarketRecord) error
	History(ctx context.Context, ticker string, limit int) ([]models.StoredRecommendation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher emits completed runs to downstream consumers.
type Publisher interface {
	PublishRun(ctx context.Context, runID string, recs []models.Recommendation) error
	Close() error
}

// Broadcaster pushes completed runs to live subscribers.
type Broadcaster interface {
	Broadcast(msg interface{})
}

// JobStore keeps the state of asynchronous runs.
type JobStore interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
}

// Metrics records pipeline level measurements.
type Metrics interface {
	RecordStage(stage string, seconds float64, err error)
	RecordSummarizer(provider, outcome string, seconds float64)
	RecordVerdict(verdict string)
	RecordError(kind string)
}
