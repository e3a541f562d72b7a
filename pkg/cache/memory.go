package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	key      string
	data     []byte
	expireAt time.Time
}

// MemoryCache implements Service using in-memory storage with LRU eviction.
// Values are stored as JSON so Get behaves like the Redis implementation.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	lru        *list.List
	locks      map[string]time.Time
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
}

// MemoryOption configures MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryMaxSize caps the number of entries; the least recently used is evicted first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(mc *MemoryCache) {
		if size > 0 {
			mc.maxSize = size
		}
	}
}

// WithMemoryDefaultTTL applies when Set is called without an expiration.
func WithMemoryDefaultTTL(ttl time.Duration) MemoryOption {
	return func(mc *MemoryCache) {
		if ttl > 0 {
			mc.defaultTTL = ttl
		}
	}
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	mc := &MemoryCache{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		locks:      make(map[string]time.Time),
		maxSize:    1000,
		defaultTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = mc.defaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.items[key]; ok {
		it := el.Value.(*memoryItem)
		it.data = data
		it.expireAt = mc.now().Add(expiration)
		mc.lru.MoveToFront(el)
		return nil
	}
	for mc.maxSize > 0 && mc.lru.Len() >= mc.maxSize {
		mc.removeElement(mc.lru.Back())
	}
	mc.items[key] = mc.lru.PushFront(&memoryItem{key: key, data: data, expireAt: mc.now().Add(expiration)})
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	el, ok := mc.items[key]
	if !ok {
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	it := el.Value.(*memoryItem)
	if mc.now().After(it.expireAt) {
		mc.removeElement(el)
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	mc.lru.MoveToFront(el)
	data := it.data
	mc.mu.Unlock()

	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		if el, ok := mc.items[k]; ok {
			mc.removeElement(el)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		if el, ok := mc.items[k]; ok && !mc.now().After(el.Value.(*memoryItem).expireAt) {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if until, ok := mc.locks[key]; ok && mc.now().Before(until) {
		return false, nil
	}
	mc.locks[key] = mc.now().Add(ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.locks, key)
	return nil
}

func (mc *MemoryCache) Ping(context.Context) error { return nil }

// Len returns the number of stored entries, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lru.Len()
}

func (mc *MemoryCache) Close() error { return nil }

func (mc *MemoryCache) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	mc.lru.Remove(el)
	delete(mc.items, el.Value.(*memoryItem).key)
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(value)
	}
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		*d = string(data)
		return nil
	case *[]byte:
		*d = append((*d)[:0], data...)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}
