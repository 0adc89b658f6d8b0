// Package cache provides a small TTL cache with manual invalidation,
// used for catalog, nutrition, and price lookups.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type entry struct {
	value    any
	cachedAt time.Time
}

// TTL is an LRU cache whose entries expire after a fixed duration.
// Expired entries are dropped on read. Invalidation is explicit so that
// admin mutations can evict stale reads immediately instead of waiting
// out the TTL.
type TTL struct {
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

// New constructs a TTL cache holding at most size entries.
func New(size int, ttl time.Duration) (*TTL, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &TTL{lru: c, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached value for key if present and fresh.
func (c *TTL) Get(key string) (any, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if c.now().Sub(e.cachedAt) > c.ttl {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Put stores a value under key with the current timestamp.
func (c *TTL) Put(key string, value any) {
	c.lru.Add(key, entry{value: value, cachedAt: c.now()})
}

// Invalidate drops a single key.
func (c *TTL) Invalidate(key string) { c.lru.Remove(key) }

// Purge drops every entry.
func (c *TTL) Purge() { c.lru.Purge() }
