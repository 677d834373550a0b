package cache

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

// Entry is a cached response body.
type Entry struct {
	Body     []byte
	StoredAt time.Time
}

// ResponseCache keeps raw response bodies in memory for a bounded time.
type ResponseCache struct {
	entries map[string]*Entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// New creates an empty cache. A zero ttl selects DefaultTTL.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// TTL returns the maximum age of a served entry.
func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// Set stores a copy of body under key, replacing any previous entry.
func (c *ResponseCache) Set(key string, body []byte) {
	stored := make([]byte, len(body))
	copy(stored, body)

	c.mu.Lock()
	c.entries[key] = &Entry{Body: stored, StoredAt: c.now()}
	c.mu.Unlock()
}

// Get returns the body stored under key when it is younger than the ttl.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.StoredAt) >= c.ttl {
		return nil, false
	}
	return entry.Body, true
}

// Age returns how long ago key was stored.
func (c *ResponseCache) Age(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return c.now().Sub(entry.StoredAt), true
}

// Sweep removes expired entries and returns how many were dropped.
func (c *ResponseCache) Sweep() int {
	now := c.now()
	count := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.StoredAt) >= c.ttl {
			delete(c.entries, key)
			count++
		}
	}
	c.mu.Unlock()

	return count
}

// Len returns the number of stored entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Start sweeps expired entries every interval until ctx is done.
func (c *ResponseCache) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}
