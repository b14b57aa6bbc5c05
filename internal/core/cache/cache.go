// Package cache is a small in-process response cache with a fixed TTL and a
// hard capacity. When full, the entry with the oldest write time goes first;
// reads do not refresh an entry.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 100
)

// Store is what the prompt builders need from a cache.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, data any)
}

type entry struct {
	data      any
	timestamp time.Time
}

type TTLCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	clock    clockwork.Clock
}

// New creates a cache. Non-positive ttl or capacity take the defaults and a
// nil clock means wall time.
func New(ttl time.Duration, capacity int, clock clockwork.Clock) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTLCache{
		entries:  make(map[string]entry, capacity+1),
		ttl:      ttl,
		capacity: capacity,
		clock:    clock,
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

func (c *TTLCache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{data: data, timestamp: c.clock.Now()}
	if len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest drops the single entry with the smallest timestamp.
// Caller holds mu.
func (c *TTLCache) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.timestamp.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.timestamp, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Lookup fetches key and asserts it to T. A value of another type counts as a miss.
func Lookup[T any](s Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
