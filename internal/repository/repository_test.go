package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/cache"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topic string
	msgs  []pkgkafka.Message
}

func (f *fakeProducer) PublishBatch(_ context.Context, topic string, messages []pkgkafka.Message) error {
	f.topic = topic
	f.msgs = append(f.msgs, messages...)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestRecommendationRows(t *testing.T) {
	at := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	recs := []models.Recommendation{
		{Ticker: "AAPL", Score: 4, Recommendation: "Buy", Insight: "Strong technicals and positive signals."},
		{Ticker: "MSFT", Score: 1, Recommendation: "Watch", Insight: "Needs more confirmation."},
	}

	rows, err := recommendationRows("run-1", recs, at)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(recommendationColumns))
	assert.Equal(t, "run-1", rows[0][0])
	assert.Equal(t, "AAPL", rows[0][1])
	assert.Equal(t, int32(4), rows[0][2])
	assert.Equal(t, at, rows[1][6])

	var signals map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rows[0][5].(string)), &signals))
	assert.Contains(t, signals, "market_data")
}

func TestMarketRowsSkipsUntagged(t *testing.T) {
	at := time.Now()
	rows := marketRows([]models.MarketRecord{
		{Date: "2025-09-05", Ticker: "AAPL", Close: models.Num(190), SMA20: models.NullMetric(), RSI14: models.Num(35), Recommendation: "Hold"},
		{Date: "2025-09-05"},
	}, at)

	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(marketRowColumns))
	assert.Equal(t, sql.NullFloat64{Float64: 190, Valid: true}, rows[0][2])
	assert.Equal(t, sql.NullFloat64{}, rows[0][3])
}

func TestKafkaPublisherKeysByTicker(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewKafkaPublisher(prod, "marketpulse.recommendations")

	recs := []models.Recommendation{
		{Ticker: "AAPL", Score: 3, Recommendation: "Buy", Signals: models.TickerContext{MarketData: models.MarketRecord{Close: models.Num(190)}}},
		{Ticker: "MSFT", Score: 2, Recommendation: "Watch"},
	}
	require.NoError(t, pub.PublishRun(context.Background(), "run-7", recs))

	assert.Equal(t, "marketpulse.recommendations", prod.topic)
	require.Len(t, prod.msgs, 2)
	assert.Equal(t, []byte("AAPL"), prod.msgs[0].Key)
	ev := prod.msgs[0].Value.(RecommendationEvent)
	assert.Equal(t, "run-7", ev.RunID)
	assert.Equal(t, 190.0, ev.Close)
	assert.Zero(t, prod.msgs[1].Value.(RecommendationEvent).Close)

	require.NoError(t, pub.PublishRun(context.Background(), "run-8", nil))
	assert.Len(t, prod.msgs, 2)
}

func TestKafkaDigestSink(t *testing.T) {
	prod := &fakeProducer{}
	sink := NewKafkaDigestSink(prod, "marketpulse.log-digest")

	err := sink.PublishDigest(context.Background(), []applogger.DigestEntry{{Level: "warn", Message: "stage failed", Count: 3}})
	require.NoError(t, err)
	require.Len(t, prod.msgs, 1)
	assert.Equal(t, []byte("warn"), prod.msgs[0].Key)
}

func TestCacheJobStore(t *testing.T) {
	store := NewCacheJobStore(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	job := &models.Job{
		ID:      "abc",
		State:   models.JobQueued,
		Request: models.InsightsRequest{Tickers: []string{"AAPL"}, Period: "1y", Interval: "1d"},
	}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, got.State)
	assert.Equal(t, []string{"AAPL"}, got.Request.Tickers)
}
