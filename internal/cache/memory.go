package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/risk"
)

type memoryEntry struct {
	value   risk.Assessment
	expires time.Time
}

// MemoryCache is an in-process RiskCache used when Redis is not configured
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl (DefaultTTL when <= 0)
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (risk.Assessment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return risk.Assessment{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return risk.Assessment{}, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, a risk.Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	// sweep expired entries once the map grows
	if len(c.entries) >= 4096 {
		for k, e := range c.entries {
			if !now.Before(e.expires) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = memoryEntry{value: a, expires: now.Add(c.ttl)}
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error { return nil }
