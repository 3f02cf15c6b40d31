package application

import (
	"sync"
	"time"
)

// availabilityCache stores recently computed seat availability to avoid
// re-reading the day's sessions for identical queries while the schedule
// remains unchanged.
type availabilityCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]availabilityCacheEntry
}

type availabilityCacheEntry struct {
	seats     []int
	expiresAt time.Time
}

// CacheOptions tunes the availability cache. Zero values fall back to a
// 30 second TTL and 256 entries.
type CacheOptions struct {
	TTL        time.Duration
	MaxEntries int
}

func newAvailabilityCache(ttl time.Duration, maxEntries int, now func() time.Time) *availabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &availabilityCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]availabilityCacheEntry),
	}
}

func (c *availabilityCache) Get(key string) ([]int, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSeats(entry.seats), true
}

func (c *availabilityCache) Store(key string, seats []int) {
	if c == nil {
		return
	}
	cloned := cloneSeats(seats)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = availabilityCacheEntry{seats: cloned, expiresAt: expiry}
}

func (c *availabilityCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]availabilityCacheEntry)
	c.mu.Unlock()
}

func (c *availabilityCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *availabilityCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneSeats(seats []int) []int {
	if len(seats) == 0 {
		return nil
	}
	out := make([]int, len(seats))
	copy(out, seats)
	return out
}
