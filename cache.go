package newstrack

import (
	"strings"
	"sync"
	"time"

	"github.com/newstrack/newstrack/journalist"
)

// ResultCache memoizes scrape results per input for a bounded time, so a
// dashboard refreshing the same outlet does not re-run a multi-minute
// browser crawl.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	result  *journalist.OutletResult
	savedAt time.Time
}

// NewResultCache creates a cache with the given TTL. A non-positive TTL
// disables caching entirely.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// WithClock overrides the time source (tests).
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.now = now
	return c
}

// Get returns the cached result for an input, or nil when absent or
// expired. Expired entries are dropped on read.
func (c *ResultCache) Get(input string) *journalist.OutletResult {
	if c.ttl <= 0 {
		return nil
	}
	key := cacheKey(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.savedAt) > c.ttl {
		delete(c.entries, key)
		return nil
	}
	return entry.result
}

// Set stores a result for an input.
func (c *ResultCache) Set(input string, result *journalist.OutletResult) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(input)] = cacheEntry{result: result, savedAt: c.now()}
}

func cacheKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
