package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketpulse",
			Subsystem: "agent",
			Name:      "latency_seconds",
			Help:      "Latency of agent run endpoints",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint", "mock"},
	)

	AgentErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketpulse",
			Subsystem: "agent",
			Name:      "errors_total",
			Help:      "Errors by agent run endpoint",
		},
		[]string{"endpoint"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketpulse",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Source cache lookups by result",
		},
		[]string{"source", "result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AgentLatency, AgentErrors, CacheLookups)
	})
}
