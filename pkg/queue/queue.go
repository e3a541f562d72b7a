package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MarketPulse/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Job handles every message of one Type. The payload is the enqueued value for
// the in-memory queue and a json.RawMessage for the Redis queue.
type Job interface {
	Name() string
	Type() string
	Handle(ctx context.Context, payload interface{}) error
}

// Queue delivers typed messages to registered jobs.
type Queue interface {
	RegisterJob(job Job)
	Start() error
	Stop(ctx context.Context) error
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
	Depth(ctx context.Context) (int64, error)
}

// QueueConfig contains the configuration for the queue
type QueueConfig struct {
	Workers    int           // number of workers
	QueueSize  int           // buffered messages, in-memory queue only
	RetryLimit int           // number of maximum retries
	RetryDelay time.Duration // time delay between retries
}

// Message represents a message in the queue
type Message struct {
	ID        string
	Type      string
	Payload   interface{}
	Attempts  int
	Timestamp time.Time
}

func newMessageID() string {
	return uuid.NewString()
}

// run hands msg to job inside a span named after the message type.
func run(ctx context.Context, job Job, msg Message) error {
	ctx, span := tracing.StartSpan(ctx, "queue."+msg.Type,
		attribute.String("queue.message_id", msg.ID),
		attribute.Int("queue.attempt", msg.Attempts+1))
	err := job.Handle(ctx, msg.Payload)
	tracing.End(span, err)
	return err
}

// nextAttempt returns the retry of a failed msg, or false once limit retries are spent.
func nextAttempt(msg Message, limit int) (Message, bool) {
	if msg.Attempts >= limit {
		return msg, false
	}
	msg.Attempts++
	return msg, true
}

// ParsePayload converts a decoded message payload back into T.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case map[string]interface{}:
		jsonData, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal map to json: %w", err)
		}
		if err := json.Unmarshal(jsonData, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json to struct: %w", err)
		}
		return &result, nil
	case []interface{}:
		jsonData, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal slice to json: %w", err)
		}
		if err := json.Unmarshal(jsonData, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json to struct slice: %w", err)
		}
		return &result, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}
