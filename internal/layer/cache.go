// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package layer

import (
	"sync"
	"time"

	"github.com/tessera-viz/tessera/internal/factory"
)

// cacheEntry is one node of the configuration cache's recency list.
type cacheEntry struct {
	key       string
	value     *factory.Factory
	prev      *cacheEntry
	next      *cacheEntry
	expiresAt time.Time
}

// configCache is a thread-safe LRU cache with TTL, keyed by configuration
// state hash. It holds override-derived factory trees so repeated requests
// for the same state skip reassembly and reconfiguration.
//
// A doubly-linked list tracks recency and a map gives O(1) lookup;
// expiration is lazy, checked on access.
type configCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*cacheEntry

	// head.next is most recently used, tail.prev least recently used.
	head *cacheEntry
	tail *cacheEntry
}

// newConfigCache creates a cache with the given capacity and TTL.
func newConfigCache(capacity int, ttl time.Duration) *configCache {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &configCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*cacheEntry, capacity),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// get retrieves a cached factory tree, refreshing its recency.
func (c *configCache) get(key string) (*factory.Factory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		return nil, false
	}
	c.moveToFront(entry)
	return entry.value, true
}

// add inserts or refreshes a cached factory tree, evicting the least
// recently used entry at capacity.
func (c *configCache) add(key string, value *factory.Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = time.Now().Add(c.ttl)
		c.moveToFront(entry)
		return
	}

	if len(c.items) >= c.capacity {
		if lru := c.tail.prev; lru != c.head {
			c.removeEntry(lru)
		}
	}

	entry := &cacheEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = entry
	c.pushFront(entry)
}

// len returns the current entry count.
func (c *configCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *configCache) pushFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *configCache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.pushFront(entry)
}

func (c *configCache) removeEntry(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}
