package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummarizer struct {
	reply string
	err   error
	delay time.Duration
	calls []string
}

func (s *stubSummarizer) Summarize(ctx context.Context, instructions, content string) (string, error) {
	s.calls = append(s.calls, content)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func row(ticker string, close, sma, rsi models.Metric) models.MarketRecord {
	return models.MarketRecord{Date: "2025-09-05", Ticker: ticker, Close: close, SMA20: sma, RSI14: rsi}
}

func TestAggregateRules(t *testing.T) {
	aapl := row("AAPL", models.Num(190), models.Num(180), models.Num(35))

	tests := []struct {
		name      string
		in        AggregateInput
		wantScore int
		wantVerd  string
		wantText  string
	}{
		{
			name:      "technicals only",
			in:        AggregateInput{MarketData: []models.MarketRecord{aapl}},
			wantScore: 2,
			wantVerd:  models.VerdictWatch,
			wantText:  "Needs more confirmation.",
		},
		{
			name: "untagged news and sentiment match every ticker",
			in: AggregateInput{
				MarketData: []models.MarketRecord{aapl},
				News:       []models.NewsArticle{{Title: "AAPL news"}},
				Sentiment:  []models.SentimentPost{{Body: "bullish"}},
			},
			wantScore: 4,
			wantVerd:  models.VerdictBuy,
			wantText:  "Strong technicals and positive signals.",
		},
		{
			name: "records tagged for another ticker are ignored",
			in: AggregateInput{
				MarketData: []models.MarketRecord{aapl},
				News:       []models.NewsArticle{{Ticker: "MSFT", Title: "MSFT news"}},
				Sentiment:  []models.SentimentPost{{Ticker: "MSFT", Body: "bearish"}},
			},
			wantScore: 2,
			wantVerd:  models.VerdictWatch,
			wantText:  "Needs more confirmation.",
		},
		{
			name: "exactly three conditions is a buy",
			in: AggregateInput{
				MarketData: []models.MarketRecord{aapl},
				News:       []models.NewsArticle{{Ticker: "AAPL"}},
			},
			wantScore: 3,
			wantVerd:  models.VerdictBuy,
			wantText:  "Strong technicals and positive signals.",
		},
		{
			name:      "missing values never satisfy a condition",
			in:        AggregateInput{MarketData: []models.MarketRecord{row("AAPL", models.Num(190), models.NullMetric(), models.NullMetric())}},
			wantScore: 0,
			wantVerd:  models.VerdictWatch,
			wantText:  "Needs more confirmation.",
		},
		{
			name:      "zero readings count as missing",
			in:        AggregateInput{MarketData: []models.MarketRecord{row("AAPL", models.Num(190), models.Num(0), models.Num(0))}},
			wantScore: 0,
			wantVerd:  models.VerdictWatch,
			wantText:  "Needs more confirmation.",
		},
		{
			name:      "rsi of exactly 40 is not oversold",
			in:        AggregateInput{MarketData: []models.MarketRecord{row("AAPL", models.Num(170), models.Num(180), models.Num(40))}},
			wantScore: 0,
			wantVerd:  models.VerdictWatch,
			wantText:  "Needs more confirmation.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewAggregator(nil).Aggregate(context.Background(), tt.in)
			require.Len(t, out, 1)
			assert.Equal(t, "AAPL", out[0].Ticker)
			assert.Equal(t, tt.wantScore, out[0].Score)
			assert.Equal(t, tt.wantVerd, out[0].Recommendation)
			assert.Equal(t, tt.wantText, out[0].Insight)
		})
	}
}

func TestAggregateNonNumericFieldsDecodeAsMissing(t *testing.T) {
	var rows []models.MarketRecord
	require.NoError(t, json.Unmarshal([]byte(`[
		{"ticker":"AAPL","close":"190","SMA_20":"N/A","RSI_14":""},
		{"ticker":"MSFT","close":300,"SMA_20":"250.5","RSI_14":"39.9"}
	]`), &rows))

	out := NewAggregator(nil).Aggregate(context.Background(), AggregateInput{MarketData: rows})
	require.Len(t, out, 2)
	assert.Equal(t, "MSFT", out[0].Ticker)
	assert.Equal(t, 2, out[0].Score)
	assert.Equal(t, "AAPL", out[1].Ticker)
	assert.Equal(t, 0, out[1].Score)
}

func TestAggregateUniverseAndOrdering(t *testing.T) {
	in := AggregateInput{
		MarketData: []models.MarketRecord{
			row("AAPL", models.Num(100), models.Num(120), models.Num(50)),
			{Date: "2025-09-05"},
			row("MSFT", models.Num(130), models.Num(120), models.Num(35)),
			row("GOOG", models.Num(100), models.Num(120), models.Num(50)),
			row("AAPL", models.Num(150), models.Num(120), models.Num(50)),
		},
		News: []models.NewsArticle{{Ticker: "TSLA", Title: "not in universe"}},
	}

	out := NewAggregator(nil).Aggregate(context.Background(), in)
	require.Len(t, out, 3)

	tickers := []string{out[0].Ticker, out[1].Ticker, out[2].Ticker}
	assert.Equal(t, []string{"MSFT", "AAPL", "GOOG"}, tickers)
	assert.Equal(t, []int{2, 1, 0}, []int{out[0].Score, out[1].Score, out[2].Score})
	assert.Equal(t, 150.0, out[1].Signals.MarketData.Close.Value, "latest row wins for a repeated ticker")
}

func TestAggregateStableOnTies(t *testing.T) {
	in := AggregateInput{
		MarketData: []models.MarketRecord{
			row("C", models.NullMetric(), models.NullMetric(), models.NullMetric()),
			row("A", models.NullMetric(), models.NullMetric(), models.NullMetric()),
			row("B", models.NullMetric(), models.NullMetric(), models.NullMetric()),
		},
	}
	out := NewAggregator(nil).Aggregate(context.Background(), in)
	require.Len(t, out, 3)
	assert.Equal(t, "C", out[0].Ticker)
	assert.Equal(t, "A", out[1].Ticker)
	assert.Equal(t, "B", out[2].Ticker)
}

func TestAggregateEmptyUniverse(t *testing.T) {
	out := NewAggregator(nil).Aggregate(context.Background(), AggregateInput{
		News: []models.NewsArticle{{Title: "orphan"}},
	})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAggregateGlobalsAttachedToEveryTicker(t *testing.T) {
	events := &models.CompanyEvents{Pressroom: []string{"Launch"}}
	nlp := &models.ExtractedEvents{KeyPhrases: []string{"a new product"}}
	in := AggregateInput{
		MarketData: []models.MarketRecord{
			row("AAPL", models.NullMetric(), models.NullMetric(), models.NullMetric()),
			row("MSFT", models.NullMetric(), models.NullMetric(), models.NullMetric()),
		},
		Macro:           models.MacroSnapshot{"GDP": {{Date: "2025-01-01", Value: models.Num(1)}}},
		CompanyEvents:   events,
		ExtractedEvents: nlp,
		Filings:         []models.Filing{{Type: "10-K"}, {Ticker: "MSFT", Type: "8-K"}},
	}
	out := NewAggregator(nil).Aggregate(context.Background(), in)
	require.Len(t, out, 2)
	for _, rec := range out {
		assert.Same(t, events, rec.Signals.Events)
		assert.Same(t, nlp, rec.Signals.NLP)
		assert.Contains(t, rec.Signals.Macro, "GDP")
	}
	byTicker := map[string]models.Recommendation{out[0].Ticker: out[0], out[1].Ticker: out[1]}
	assert.Len(t, byTicker["AAPL"].Signals.SECFilings, 1)
	assert.Len(t, byTicker["MSFT"].Signals.SECFilings, 2)
}

func TestAggregateSummarizer(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		err       error
		wantScore int
		wantVerd  string
		wantText  string
	}{
		{
			name:      "well formed reply",
			reply:     `{"recommendation":"Buy","confidence":5,"explanation":"Momentum and news align."}`,
			wantScore: 5,
			wantVerd:  "Buy",
			wantText:  "Momentum and news align.",
		},
		{
			name:      "fenced json",
			reply:     "```json\n{\"recommendation\":\"Sell\",\"confidence\":\"2\",\"explanation\":\"Weak.\"}\n```",
			wantScore: 2,
			wantVerd:  "Sell",
			wantText:  "Weak.",
		},
		{
			name:      "free text",
			reply:     "Hold for now.",
			wantScore: 3,
			wantVerd:  "Hold for now.",
			wantText:  "Hold for now.",
		},
		{
			name:      "missing keys",
			reply:     `{"confidence":4}`,
			wantScore: 4,
			wantVerd:  "Watch",
			wantText:  `{"confidence":4}`,
		},
		{
			name:      "non numeric confidence",
			reply:     `{"recommendation":"Buy","confidence":"high","explanation":"x"}`,
			wantScore: 3,
			wantVerd:  "Buy",
			wantText:  "x",
		},
		{
			name:      "null confidence is neutral",
			reply:     `{"recommendation":"Buy","confidence":null,"explanation":"x"}`,
			wantScore: 3,
			wantVerd:  "Buy",
			wantText:  "x",
		},
		{
			name:      "fractional confidence truncates",
			reply:     `{"recommendation":"Buy","confidence":4.8,"explanation":"x"}`,
			wantScore: 4,
			wantVerd:  "Buy",
			wantText:  "x",
		},
		{
			name:      "json array reply",
			reply:     `[1,2]`,
			wantScore: 3,
			wantVerd:  "Watch",
			wantText:  "AI error: fallback to Watch.",
		},
		{
			name:      "json null reply",
			reply:     `null`,
			wantScore: 3,
			wantVerd:  "Watch",
			wantText:  "AI error: fallback to Watch.",
		},
		{
			name:      "bare json string reply",
			reply:     `"Buy"`,
			wantScore: 3,
			wantVerd:  "Watch",
			wantText:  "AI error: fallback to Watch.",
		},
		{
			name:      "invocation failure",
			err:       errors.New("401 unauthorized"),
			wantScore: 3,
			wantVerd:  "Watch",
			wantText:  "AI error: fallback to Watch.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSummarizer{reply: tt.reply, err: tt.err}
			out := NewAggregator(s).Aggregate(context.Background(), AggregateInput{
				MarketData: []models.MarketRecord{row("AAPL", models.Num(1), models.Num(2), models.Num(3))},
			})
			require.Len(t, out, 1)
			assert.Equal(t, tt.wantScore, out[0].Score)
			assert.Equal(t, tt.wantVerd, out[0].Recommendation)
			assert.Equal(t, tt.wantText, out[0].Insight)
			require.Len(t, s.calls, 1)
			assert.Contains(t, s.calls[0], `"market_data"`)
		})
	}
}

func TestAggregateSummarizerTimeout(t *testing.T) {
	s := &stubSummarizer{reply: `{"recommendation":"Buy","confidence":5}`, delay: time.Second}
	agg := NewAggregator(s, WithSummarizerTimeout(10*time.Millisecond))

	out := agg.Aggregate(context.Background(), AggregateInput{
		MarketData: []models.MarketRecord{row("AAPL", models.NullMetric(), models.NullMetric(), models.NullMetric())},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Score)
	assert.Equal(t, "Watch", out[0].Recommendation)
	assert.Equal(t, "AI error: fallback to Watch.", out[0].Insight)
}

func TestAggregateRepeatable(t *testing.T) {
	in := AggregateInput{MarketData: []models.MarketRecord{row("AAPL", models.Num(2), models.Num(1), models.Num(10))}}
	agg := NewAggregator(nil)
	first := agg.Aggregate(context.Background(), in)
	second := agg.Aggregate(context.Background(), in)
	assert.Equal(t, first, second)
}
