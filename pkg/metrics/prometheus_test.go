package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordStage("news", 0.2, nil)
	r.RecordStage("news", 0.3, errors.New("down"))
	r.RecordVerdict("Buy")
	r.RecordVerdict("Strong buy with conviction")
	r.RecordSummarizer("openai", "timeout", 1.5)
	r.RecordError("kafka_publish")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageErrors.WithLabelValues("news")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verdicts.WithLabelValues("Buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verdicts.WithLabelValues("other")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.summarizerCalls.WithLabelValues("openai", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("kafka_publish")))
}
