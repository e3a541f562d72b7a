package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
)

// BatchPublisher is the part of pkg/kafka.Producer the publishers need.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// RecommendationEvent is the message emitted for every scored ticker.
type RecommendationEvent struct {
	RunID          string    `json:"run_id"`
	Ticker         string    `json:"ticker"`
	Score          int       `json:"score"`
	Recommendation string    `json:"recommendation"`
	Insight        string    `json:"insight"`
	Close          float64   `json:"close,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by ticker.
type KafkaPublisher struct {
	producer BatchPublisher
	topic    string
	now      func() time.Time
}

func NewKafkaPublisher(producer BatchPublisher, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) PublishRun(ctx context.Context, runID string, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	at := p.now()
	msgs := make([]pkgkafka.Message, len(recs))
	for i, r := range recs {
		ev := RecommendationEvent{
			RunID:          runID,
			Ticker:         r.Ticker,
			Score:          r.Score,
			Recommendation: r.Recommendation,
			Insight:        r.Insight,
			CreatedAt:      at,
		}
		if r.Signals.MarketData.Close.Valid {
			ev.Close = r.Signals.MarketData.Close.Value
		}
		msgs[i] = pkgkafka.Message{Key: []byte(r.Ticker), Value: ev}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaDigestSink ships grouped warn/error log lines to a topic.
type KafkaDigestSink struct {
	producer BatchPublisher
	topic    string
}

func NewKafkaDigestSink(producer BatchPublisher, topic string) applogger.DigestSink {
	return &KafkaDigestSink{producer: producer, topic: topic}
}

func (s *KafkaDigestSink) PublishDigest(ctx context.Context, entries []applogger.DigestEntry) error {
	msgs := make([]pkgkafka.Message, len(entries))
	for i, e := range entries {
		msgs[i] = pkgkafka.Message{Key: []byte(e.Level), Value: e}
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}
