package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"MarketPulse/pkg/logger"
)

// MemoryQueue is an in-process queue with the same retry and dead-letter rules as
// RedisQueue. Messages are lost on restart.
type MemoryQueue struct {
	logger  *logger.Logger
	config  *QueueConfig
	jobs    map[string]Job
	msgs    chan Message
	delayed sync.WaitGroup
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	dead    []Message
	pending int64
}

func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(map[string]Job),
		msgs:   make(chan Message, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
}

func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return fmt.Errorf("queue already running")
	}
	q.running = true
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("memory queue started", logger.Int("workers", q.config.Workers))
	return nil
}

func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		q.delayed.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	running := q.running
	_, known := q.jobs[msgType]
	q.mu.RUnlock()
	if !running {
		return fmt.Errorf("queue not running")
	}
	if !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	// Round-trip through JSON so handlers see the same payload shape as with Redis.
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{ID: newMessageID(), Type: msgType, Payload: json.RawMessage(raw), Timestamp: time.Now()}
	return q.push(ctx, msg)
}

func (q *MemoryQueue) push(ctx context.Context, msg Message) error {
	q.mu.Lock()
	q.pending++
	q.mu.Unlock()
	select {
	case q.msgs <- msg:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
		return ctx.Err()
	}
}

func (q *MemoryQueue) Depth(context.Context) (int64, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pending, nil
}

// DeadLetters returns messages that exhausted their retries.
func (q *MemoryQueue) DeadLetters() []Message {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Message(nil), q.dead...)
}

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case msg := <-q.msgs:
			q.mu.Lock()
			q.pending--
			job := q.jobs[msg.Type]
			q.mu.Unlock()
			q.handle(job, msg)
		}
	}
}

func (q *MemoryQueue) handle(job Job, msg Message) {
	err := run(q.ctx, job, msg)
	if err == nil || q.ctx.Err() != nil {
		return
	}

	q.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	next, retry := nextAttempt(msg, q.config.RetryLimit)
	if !retry {
		q.mu.Lock()
		q.dead = append(q.dead, msg)
		q.mu.Unlock()
		return
	}

	q.mu.Lock()
	q.pending++
	q.mu.Unlock()
	q.delayed.Add(1)
	go func() {
		defer q.delayed.Done()
		timer := time.NewTimer(q.config.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			select {
			case q.msgs <- next:
				return
			case <-q.ctx.Done():
			}
		}
		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
	}()
}
