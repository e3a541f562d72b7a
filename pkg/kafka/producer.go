package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"MarketPulse/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// HeaderTraceID carries the publishing span's trace id.
const HeaderTraceID = "trace_id"

// Producer wraps Kafka writer.
type Producer struct {
	writer  *kafka.Writer
	comp    string
	brokers []string
	metrics *producerMetrics
}

// Message represents a Kafka message. Value is sent as-is when it is []byte or string
// and JSON-encoded otherwise.
type Message struct {
	Key   []byte
	Value interface{}
}

// NewProducer builds a writer for cfg. Nothing is dialed until the first write.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := prepare(&cfg, cfg.Brokers); err != nil {
		return nil, err
	}

	var bal kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.Linger,
	}
	return &Producer{writer: writer, comp: cfg.Compression, brokers: cfg.Brokers, metrics: producerMetricsOnce()}, nil
}

// Publish sends a message to the specified topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishBatch sends multiple messages to the specified topic in one write.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	headers := traceHeaders(ctx)
	msgs := make([]kafka.Message, 0, len(messages))
	var totalBytes int64
	for _, m := range messages {
		v, err := encodeValue(m.Value)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Topic:   topic,
			Key:     m.Key,
			Value:   v,
			Headers: headers,
			Time:    start,
		})
		totalBytes += int64(len(v))
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	p.metrics.observe(topic, p.comp, totalBytes, len(messages), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), topic, err)
	}
	return nil
}

// Ping dials the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, b := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("no reachable broker: %w", lastErr)
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encodeValue(value interface{}) ([]byte, error) {
	switch val := value.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	}
	v, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return v, nil
}

func traceHeaders(ctx context.Context) []kafka.Header {
	traceID, _, ok := tracing.IDs(ctx)
	if !ok {
		return nil
	}
	return []kafka.Header{{Key: HeaderTraceID, Value: []byte(traceID)}}
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	sharedProducerMetrics *producerMetrics
	producerMetricsMu     sync.Once
)

// producerMetricsOnce registers the collectors on first use; every producer shares them.
func producerMetricsOnce() *producerMetrics {
	producerMetricsMu.Do(func() {
		sharedProducerMetrics = &producerMetrics{
			messages: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "marketpulse_kafka_published_messages_total",
				Help: "Messages written to Kafka by topic and outcome",
			}, []string{"topic", "compression", "result"}),
			bytes: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "marketpulse_kafka_published_bytes_total",
				Help: "Encoded payload bytes written to Kafka",
			}, []string{"topic"}),
			latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "marketpulse_kafka_publish_duration_seconds",
				Help:    "Time spent in one batch write",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"topic"}),
		}
	})
	return sharedProducerMetrics
}

func (m *producerMetrics) observe(topic, comp string, bytes int64, count int, dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, comp, result).Add(float64(count))
	m.bytes.WithLabelValues(topic).Add(float64(bytes))
	m.latency.WithLabelValues(topic).Observe(dur.Seconds())
}
