package kafka

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// ProducerConfig tunes the writer. Zero fields take the `default` tag value,
// so RequiredAcks 0 means all replicas.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int           `default:"-1"`
	Compression  string        `default:"gzip"`
	MaxAttempts  int           `default:"3"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	BatchSize    int           `default:"100"`
	BatchBytes   int           `default:"1048576"`
	Linger       time.Duration `default:"50ms"`
	// HashByKey keeps every message of one key (a ticker) on one partition.
	HashByKey bool
}

// ConsumerConfig tunes the reader group and its worker pool.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string        `default:"marketpulse"`
	Workers    int           `default:"1"`
	BufferSize int           `default:"10"`
	RetryMax   int           `default:"3"`
	BackoffMin time.Duration `default:"50ms"`
	BackoffMax time.Duration `default:"2s"`
	// DLQTopic receives messages that exhausted their retries. Empty leaves
	// them uncommitted for redelivery.
	DLQTopic string
	MinBytes int `default:"1"`
	MaxBytes int `default:"10000000"`
}

func prepare(cfg interface{}, brokers []string) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("kafka config: %w", err)
	}
	if len(brokers) == 0 {
		return fmt.Errorf("kafka brokers are required")
	}
	return nil
}
