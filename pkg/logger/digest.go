package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

// DigestSink receives grouped log entries.
type DigestSink interface {
	PublishDigest(ctx context.Context, entries []DigestEntry) error
}

type DigestConfig struct {
	Interval  time.Duration // flush period
	MaxGroups int           // flush early once this many distinct groups are pending
	Sink      DigestSink
}

// DigestEntry is one group of identical log lines.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Digest groups repeated warn/error lines and ships them to a sink.
type Digest struct {
	cfg     DigestConfig
	mu      sync.Mutex
	pending map[uint64]*DigestEntry
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewDigest(cfg *DigestConfig) *Digest {
	c := *cfg
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxGroups <= 0 {
		c.MaxGroups = 100
	}
	d := &Digest{cfg: c, pending: map[uint64]*DigestEntry{}, stop: make(chan struct{})}
	d.wg.Add(1)
	go d.loop()
	return d
}

// Add counts one log line. Lines are grouped by level, message and caller.
func (d *Digest) Add(level, msg string, fields map[string]interface{}, caller string) {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s", level, msg, caller)
	key := h.Sum64()
	now := time.Now()

	d.mu.Lock()
	if e, ok := d.pending[key]; ok {
		e.Count++
		e.LastSeen = now
		e.Fields = fields
	} else {
		d.pending[key] = &DigestEntry{
			Level: level, Message: msg, Fields: fields, Caller: caller,
			Count: 1, FirstSeen: now, LastSeen: now,
		}
	}
	var batch []DigestEntry
	if len(d.pending) >= d.cfg.MaxGroups {
		batch = d.drainLocked()
	}
	d.mu.Unlock()

	if batch != nil {
		go d.ship(batch)
	}
}

// Snapshot returns pending groups, most frequent first.
func (d *Digest) Snapshot() []DigestEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DigestEntry, 0, len(d.pending))
	for _, e := range d.pending {
		out = append(out, *e)
	}
	sortEntries(out)
	return out
}

func (d *Digest) drainLocked() []DigestEntry {
	if len(d.pending) == 0 {
		return nil
	}
	out := make([]DigestEntry, 0, len(d.pending))
	for _, e := range d.pending {
		out = append(out, *e)
	}
	d.pending = map[uint64]*DigestEntry{}
	sortEntries(out)
	return out
}

func (d *Digest) loop() {
	defer d.wg.Done()
	t := time.NewTicker(d.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			d.flush()
		case <-d.stop:
			d.flush()
			return
		}
	}
}

func (d *Digest) flush() {
	d.mu.Lock()
	batch := d.drainLocked()
	d.mu.Unlock()
	if batch != nil {
		d.ship(batch)
	}
}

func (d *Digest) ship(batch []DigestEntry) {
	if d.cfg.Sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.cfg.Sink.PublishDigest(ctx, batch); err != nil {
		fmt.Printf("log digest: publish failed: %v\n", err)
	}
}

// Close flushes pending groups and stops the background loop.
func (d *Digest) Close() {
	d.once.Do(func() {
		close(d.stop)
		d.wg.Wait()
	})
}

func sortEntries(es []DigestEntry) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Count != es[j].Count {
			return es[i].Count > es[j].Count
		}
		return es[i].FirstSeen.Before(es[j].FirstSeen)
	})
}
