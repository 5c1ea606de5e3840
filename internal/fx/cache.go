package fx

import (
	"maps"
	"sync"
	"time"
)

// DefaultTTL is how long a fetched rate table stays valid.
const DefaultTTL = 24 * time.Hour

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Cache is a single-slot store for the latest USD-based rate table.
// Concurrent refreshes overwrite each other; the last writer wins.
type Cache struct {
	fetchedAt time.Time
	clock     Clock
	rates     map[string]float64
	ttl       time.Duration
	mu        sync.RWMutex
}

// NewCache creates a cache whose entries expire ttl after being set.
// A nil clock uses the system clock.
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Cache{ttl: ttl, clock: clock}
}

// Get returns the cached table if it has not expired.
func (c *Cache) Get() (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rates == nil || !c.clock.Now().Before(c.fetchedAt.Add(c.ttl)) {
		return nil, false
	}
	return c.rates, true
}

// Set stores a freshly fetched table.
func (c *Cache) Set(rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = maps.Clone(rates)
	c.fetchedAt = c.clock.Now()
}

// Expiry returns when the cached table stops being valid. It is the zero time
// when nothing has been cached.
func (c *Cache) Expiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rates == nil {
		return time.Time{}
	}
	return c.fetchedAt.Add(c.ttl)
}

// FetchedAt returns when the cached table was stored.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Clear drops the cached table.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = nil
	c.fetchedAt = time.Time{}
}
