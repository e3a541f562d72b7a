package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

const (
	tableRecommendations = "recommendations"
	tableMarketRows      = "market_rows"
)

var (
	recommendationColumns = []string{"run_id", "ticker", "score", "recommendation", "insight", "signals", "created_at"}
	marketRowColumns      = []string{"date", "ticker", "close", "sma_20", "rsi_14", "recommendation", "ingested_at"}
)

func schema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            run_id String,
            ticker LowCardinality(String),
            score Int32,
            recommendation String,
            insight String,
            signals String,
            created_at DateTime64(3)
        ) ENGINE = MergeTree ORDER BY (ticker, created_at)`, db, tableRecommendations),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            date String,
            ticker LowCardinality(String),
            close Nullable(Float64),
            sma_20 Nullable(Float64),
            rsi_14 Nullable(Float64),
            recommendation String,
            ingested_at DateTime64(3)
        ) ENGINE = ReplacingMergeTree(ingested_at) ORDER BY (ticker, date)`, db, tableMarketRows),
	}
}

// CHRecommendationStore implements RecommendationStore backed by ClickHouse.
type CHRecommendationStore struct {
	ch  *pkgch.Client
	db  string
	l   *applogger.Logger
	now func() time.Time
}

func NewCHRecommendationStore(ch *pkgch.Client, l *applogger.Logger) domrepo.RecommendationStore {
	return &CHRecommendationStore{ch: ch, db: ch.Database(), l: l, now: time.Now}
}

func (s *CHRecommendationStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schema(s.db))
}

func (s *CHRecommendationStore) StoreRun(ctx context.Context, runID string, recs []models.Recommendation) error {
	rows, err := recommendationRows(runID, recs, s.now())
	if err != nil {
		return err
	}
	return s.ch.InsertRows(ctx, s.db+"."+tableRecommendations, recommendationColumns, rows)
}

func (s *CHRecommendationStore) StoreMarketData(ctx context.Context, rows []models.MarketRecord) error {
	return s.ch.InsertRows(ctx, s.db+"."+tableMarketRows, marketRowColumns, marketRows(rows, s.now()))
}

func (s *CHRecommendationStore) History(ctx context.Context, ticker string, limit int) ([]models.StoredRecommendation, error) {
	q := fmt.Sprintf(`
        SELECT run_id, ticker, score, recommendation, insight, created_at
        FROM %s.%s
        WHERE ticker = ?
        ORDER BY created_at DESC
        LIMIT ?`, s.db, tableRecommendations)
	rows, err := s.ch.DB().QueryContext(ctx, q, ticker, limit)
	if err != nil {
		s.l.Error("clickhouse history query error", applogger.String("ticker", ticker), applogger.Error(err))
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoredRecommendation, 0, limit)
	for rows.Next() {
		var r models.StoredRecommendation
		var score int32
		if err := rows.Scan(&r.RunID, &r.Ticker, &score, &r.Recommendation, &r.Insight, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		r.Score = int(score)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHRecommendationStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHRecommendationStore) Close() error {
	return s.ch.Close()
}

func recommendationRows(runID string, recs []models.Recommendation, at time.Time) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		signals, err := json.Marshal(r.Signals)
		if err != nil {
			return nil, fmt.Errorf("encode signals for %s: %w", r.Ticker, err)
		}
		rows = append(rows, []interface{}{runID, r.Ticker, int32(r.Score), r.Recommendation, r.Insight, string(signals), at})
	}
	return rows, nil
}

func marketRows(recs []models.MarketRecord, at time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(recs))
	for _, r := range recs {
		if r.Ticker == "" || r.Date == "" {
			continue
		}
		rows = append(rows, []interface{}{r.Date, r.Ticker, nullable(r.Close), nullable(r.SMA20), nullable(r.RSI14), r.Recommendation, at})
	}
	return rows
}

func nullable(m models.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Valid}
}
