package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"MarketPulse/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	pollTimeout   = time.Second
	retryInterval = time.Second
)

// QueueMode defines the operation mode of the queue.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
)

// RedisQueue keeps pending messages in a list, delayed retries in a sorted set
// scored by due time, and exhausted messages in a dead-letter list.
type RedisQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	client    *redis.Client
	mode      QueueMode
	keyPrefix string

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets custom key prefix.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		r.keyPrefix = prefix
	}
}

// redisMessage is the stored form; the payload stays raw until a job parses it.
type redisMessage struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	rq := &RedisQueue{
		logger:    lgr,
		config:    config,
		client:    client,
		mode:      mode,
		keyPrefix: "marketpulse:queue",
		jobs:      make(map[string]Job),
	}
	for _, opt := range opts {
		opt(rq)
	}
	return rq
}

// RegisterJob binds job to its message type. Producer-only queues accept any type.
func (r *RedisQueue) RegisterJob(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.Type()]; exists {
		r.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.logger.Info("job registered", logger.String("job", job.Name()), logger.String("type", job.Type()))
}

func (r *RedisQueue) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("queue already running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.running = true
	if r.mode == ModeProducerOnly {
		r.logger.Info("redis publisher started", logger.String("addr", r.client.Options().Addr))
		return nil
	}

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.promoteRetries()

	r.logger.Info("redis queue started",
		logger.Int("workers", r.config.Workers),
		logger.String("addr", r.client.Options().Addr),
		logger.String("prefix", r.keyPrefix))
	return nil
}

// Stop cancels the workers and waits for in-flight messages until ctx expires.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		r.logger.Info("redis queue stopped")
		return nil
	}
}

func (r *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.RLock()
	running := r.running
	_, known := r.jobs[msgType]
	r.mu.RUnlock()
	if !running {
		return fmt.Errorf("queue not running")
	}
	if r.mode != ModeProducerOnly && !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(redisMessage{ID: newMessageID(), Type: msgType, Payload: raw, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.LPush(ctx, r.pendingKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Depth counts pending and delayed messages.
func (r *RedisQueue) Depth(ctx context.Context) (int64, error) {
	pipe := r.client.Pipeline()
	pending := pipe.LLen(ctx, r.pendingKey())
	delayed := pipe.ZCard(ctx, r.retryKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return pending.Val() + delayed.Val(), nil
}

// DeadLetters returns up to limit dead-lettered messages, newest first.
func (r *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]Message, error) {
	items, err := r.client.LRange(ctx, r.deadKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read dead letters: %w", err)
	}
	out := make([]Message, 0, len(items))
	for _, it := range items {
		if msg, err := decodeMessage(it); err == nil {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	for r.ctx.Err() == nil {
		res, err := r.client.BRPop(r.ctx, pollTimeout, r.pendingKey()).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil), errors.Is(err, context.Canceled):
			continue
		default:
			r.logger.Error("brpop error", logger.Int("worker_id", id), logger.Error(err))
			sleep(r.ctx, pollTimeout)
			continue
		}
		if len(res) < 2 {
			continue
		}

		msg, err := decodeMessage(res[1])
		if err != nil {
			r.logger.Error("unmarshal message", logger.Error(err))
			continue
		}
		r.process(msg)
	}
}

func (r *RedisQueue) process(msg Message) {
	r.mu.RLock()
	job, ok := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		r.logger.Error("no job found", logger.String("type", msg.Type), logger.String("id", msg.ID))
		r.push(r.deadKey(), msg)
		return
	}

	start := time.Now()
	err := run(r.ctx, job, msg)
	if err == nil {
		r.logger.Debug("message handled",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Duration("elapsed", time.Since(start)))
		return
	}
	if r.ctx.Err() != nil {
		// shutting down: put it back untouched for the next instance
		r.push(r.pendingKey(), msg)
		return
	}

	r.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	next, retry := nextAttempt(msg, r.config.RetryLimit)
	if !retry {
		r.logger.Error("max retries reached", logger.String("id", msg.ID), logger.String("job", job.Name()))
		r.push(r.deadKey(), msg)
		return
	}
	due := time.Now().Add(r.config.RetryDelay)
	data, err := encodeMessage(next)
	if err == nil {
		err = r.client.ZAdd(context.Background(), r.retryKey(), redis.Z{Score: float64(due.UnixMilli()), Member: data}).Err()
	}
	if err != nil {
		r.logger.Error("schedule retry", logger.String("id", msg.ID), logger.Error(err))
	}
}

// promoteRetries moves due retries back to the pending list. ZRem guards against
// two instances promoting the same member.
func (r *RedisQueue) promoteRetries() {
	defer r.wg.Done()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}

		due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(time.Now().UnixMilli(), 10),
		}).Result()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				r.logger.Error("fetch retry messages", logger.Error(err))
			}
			continue
		}
		for _, member := range due {
			removed, err := r.client.ZRem(r.ctx, r.retryKey(), member).Result()
			if err != nil || removed == 0 {
				continue
			}
			if err := r.client.LPush(r.ctx, r.pendingKey(), member).Err(); err != nil {
				r.logger.Error("move retry to queue", logger.Error(err))
			}
		}
	}
}

func (r *RedisQueue) push(key string, msg Message) {
	data, err := encodeMessage(msg)
	if err == nil {
		err = r.client.LPush(context.Background(), key, data).Err()
	}
	if err != nil {
		r.logger.Error("lpush", logger.String("key", key), logger.String("id", msg.ID), logger.Error(err))
	}
}

func (r *RedisQueue) pendingKey() string { return r.keyPrefix + ":messages" }
func (r *RedisQueue) retryKey() string   { return r.keyPrefix + ":retry" }
func (r *RedisQueue) deadKey() string    { return r.keyPrefix + ":dlq" }

func encodeMessage(msg Message) ([]byte, error) {
	raw, ok := msg.Payload.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(redisMessage{ID: msg.ID, Type: msg.Type, Payload: raw, Attempts: msg.Attempts, Timestamp: msg.Timestamp})
}

func decodeMessage(s string) (Message, error) {
	var rm redisMessage
	if err := json.Unmarshal([]byte(s), &rm); err != nil {
		return Message{}, err
	}
	return Message{ID: rm.ID, Type: rm.Type, Payload: rm.Payload, Attempts: rm.Attempts, Timestamp: rm.Timestamp}, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
