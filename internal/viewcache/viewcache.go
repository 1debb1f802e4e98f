// Package viewcache suppresses duplicate view-count increments from the
// same visitor within a rolling window. The cache is process-local and
// best-effort: a restart or a second instance resets the window, which is
// acceptable for an approximate analytics counter.
package viewcache

import (
	"fmt"
	"sync"
	"time"
)

// Cache is a time-expiring set of (property, ip) keys.
type Cache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]time.Time
	done    chan struct{}
	once    sync.Once

	// now is swappable in tests
	now func() time.Time
}

// NewCache creates a cache whose entries expire after ttl and starts a
// background sweep of expired keys.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go c.sweep()
	return c
}

// Visit records a view of propertyID from ipAddress. It returns true the
// first time a given pair is seen within the TTL window, meaning the
// caller should increment the stored counter, and false on repeat visits.
func (c *Cache) Visit(propertyID, ipAddress string) bool {
	key := fmt.Sprintf("view-%s-%s", propertyID, ipAddress)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if expiry, ok := c.entries[key]; ok && now.Before(expiry) {
		return false
	}
	c.entries[key] = now.Add(c.ttl)
	return true
}

// Len returns the number of tracked keys, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background sweeper. The cache remains usable; entries
// simply stop being reclaimed.
func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Cache) sweep() {
	interval := c.ttl
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, expiry := range c.entries {
		if !now.Before(expiry) {
			delete(c.entries, key)
		}
	}
}
