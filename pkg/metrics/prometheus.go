package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageLatency    *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	summarizerCalls *prometheus.CounterVec
	summarizerTime  *prometheus.HistogramVec
	verdicts        *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

// New creates a recorder registered on reg (prometheus.DefaultRegisterer in production).
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stageLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		stageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_stage_errors_total",
				Help: "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		),
		summarizerCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_summarizer_calls_total",
				Help: "Summarizer calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		summarizerTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_summarizer_duration_seconds",
				Help:    "Summarizer call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_recommendations_total",
				Help: "Recommendations produced by verdict",
			},
			[]string{"verdict"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordStage records a stage duration and counts it as failed when err is set.
func (r *Recorder) RecordStage(stage string, seconds float64, err error) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
	if err != nil {
		r.stageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordSummarizer records one summarizer call.
func (r *Recorder) RecordSummarizer(provider, outcome string, seconds float64) {
	r.summarizerCalls.WithLabelValues(provider, outcome).Inc()
	r.summarizerTime.WithLabelValues(provider).Observe(seconds)
}

// RecordVerdict counts a produced recommendation.
func (r *Recorder) RecordVerdict(verdict string) {
	r.verdicts.WithLabelValues(verdictLabel(verdict)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Free-text verdicts from the summarizer would explode label cardinality.
func verdictLabel(v string) string {
	switch v {
	case "Buy", "Sell", "Hold", "Watch":
		return v
	}
	return "other"
}
