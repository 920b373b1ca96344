package cache

import (
	"context"
	"sync"
	"time"

	"github.com/TFMV/janus/pkg/classifier"
	"github.com/TFMV/janus/pkg/models"
)

// Cache defines the interface for caching query explanations. Only
// explanations are cached: they are derived purely from statement text, so
// they never go stale the way result sets would.
type Cache interface {
	// Get retrieves an explanation from the cache. A miss returns nil, nil.
	Get(ctx context.Context, key string) (*models.ExplainResult, error)
	// Put stores an explanation in the cache
	Put(ctx context.Context, key string, result *models.ExplainResult) error
	// Delete removes an explanation from the cache
	Delete(ctx context.Context, key string) error
	// Clear removes all entries from the cache
	Clear(ctx context.Context) error
	// Close releases any resources held by the cache
	Close() error
}

// Entry represents a single cache entry with metadata
type Entry struct {
	Result    *models.ExplainResult
	CreatedAt time.Time
	LastUsed  time.Time
}

// MemoryCache implements Cache using in-memory storage with LRU eviction
// and per-entry TTL expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	maxEntries int
	ttl        time.Duration
	stats      *StatsCollector
}

// NewMemoryCache creates a memory cache from the given configuration.
func NewMemoryCache(cfg *Config) *MemoryCache {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := &MemoryCache{
		entries:    make(map[string]*Entry),
		maxEntries: cfg.MaxEntries,
		ttl:        cfg.TTL,
	}
	if cfg.EnableStats {
		c.stats = NewStatsCollector()
	}
	return c
}

// Get retrieves an explanation from the cache. Expired entries are removed
// and reported as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) (*models.ExplainResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.recordMiss()
		return nil, nil
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		delete(c.entries, key)
		c.recordExpiration()
		c.recordMiss()
		c.updateSize()
		return nil, nil
	}

	entry.LastUsed = time.Now()
	c.recordHit()
	return entry.Result, nil
}

// Put stores an explanation in the cache, evicting the least recently used
// entry when the cache is full.
func (c *MemoryCache) Put(ctx context.Context, key string, result *models.ExplainResult) error {
	if result == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[key] = &Entry{
		Result:    result,
		CreatedAt: now,
		LastUsed:  now,
	}
	c.updateSize()
	return nil
}

// Delete removes an explanation from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.updateSize()
	return nil
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.updateSize()
	return nil
}

// Close releases any resources held by the cache
func (c *MemoryCache) Close() error {
	return c.Clear(context.Background())
}

// Stats returns a snapshot of cache statistics, or the zero value when
// statistics are disabled.
func (c *MemoryCache) Stats() Stats {
	if c.stats == nil {
		return Stats{}
	}
	return c.stats.GetStats()
}

// evictOldest removes the least recently used entry. Callers hold the lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastUsed
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.recordEviction()
	}
}

func (c *MemoryCache) recordHit() {
	if c.stats != nil {
		c.stats.RecordHit()
	}
}

func (c *MemoryCache) recordMiss() {
	if c.stats != nil {
		c.stats.RecordMiss()
	}
}

func (c *MemoryCache) recordEviction() {
	if c.stats != nil {
		c.stats.RecordEviction()
	}
}

func (c *MemoryCache) recordExpiration() {
	if c.stats != nil {
		c.stats.RecordExpiration()
	}
}

func (c *MemoryCache) updateSize() {
	if c.stats != nil {
		c.stats.UpdateSize(int64(len(c.entries)))
	}
}

// Key derives the cache key for a statement. Statements that differ only in
// whitespace share a key.
func Key(query string) string {
	return classifier.Normalize(query)
}
