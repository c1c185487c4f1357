package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryCache is an in-process TTL cache. When full it drops expired entries and then
// evicts the least-accessed, oldest half in one batch.
type MemoryCache struct {
	capacity int
	entries  map[string]*memoryEntry
	mu       sync.Mutex
	now      func() time.Time
	logger   *zap.Logger

	hits, misses, evictions, expired uint64
}

type memoryEntry struct {
	key         string
	value       []byte
	insertedAt  time.Time
	ttl         time.Duration
	accessCount int
}

func (e *memoryEntry) expiredAt(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for eviction events.
func WithLogger(logger *zap.Logger) MemoryOption {
	return func(c *MemoryCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewMemoryCache creates a cache holding at most capacity entries.
func NewMemoryCache(capacity int, opts ...MemoryOption) *MemoryCache {
	if capacity <= 0 {
		capacity = 1000
	}
	c := &MemoryCache{
		capacity: capacity,
		entries:  make(map[string]*memoryEntry),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and counts the access. Expired entries are removed
// and reported as ErrCacheMiss. The returned slice must not be modified.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, ErrCacheMiss
	}
	if e.expiredAt(c.now()) {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return nil, ErrCacheMiss
	}
	e.accessCount++
	c.hits++
	return e.value, nil
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.insertedAt = now
		e.ttl = ttl
		return nil
	}
	if len(c.entries) >= c.capacity {
		c.makeRoom(now)
	}
	c.entries[key] = &memoryEntry{key: key, value: value, insertedAt: now, ttl: ttl}
	return nil
}

// makeRoom must be called with mu held.
func (c *MemoryCache) makeRoom(now time.Time) {
	for key, e := range c.entries {
		if e.expiredAt(now) {
			delete(c.entries, key)
			c.expired++
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	victims := make([]*memoryEntry, 0, len(c.entries))
	for _, e := range c.entries {
		victims = append(victims, e)
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].accessCount != victims[j].accessCount {
			return victims[i].accessCount < victims[j].accessCount
		}
		if !victims[i].insertedAt.Equal(victims[j].insertedAt) {
			return victims[i].insertedAt.Before(victims[j].insertedAt)
		}
		return victims[i].key < victims[j].key
	})
	n := max(1, len(victims)/2)
	for _, e := range victims[:n] {
		delete(c.entries, e.key)
	}
	c.evictions += uint64(n)
	c.logger.Debug("cache eviction", zap.Int("evicted", n), zap.Int("remaining", len(c.entries)))
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included until they are touched.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		Size:      len(c.entries),
		Capacity:  c.capacity,
	}
}

// Close is a no-op for the memory cache.
func (c *MemoryCache) Close() error {
	return nil
}
