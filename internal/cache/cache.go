// Package cache provides the API response cache used by the Unsplash
// fetchers: an in-memory LRU tier, a bbolt-backed disk tier, and a tiered
// combination of the two.
package cache

import (
	"sync"
	"time"

	memcache "github.com/apibillme/cache"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
)

// Cache stores response payloads by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Memory is an in-memory LRU cache with a fixed entry capacity and TTL.
type Memory struct {
	mu  sync.Mutex
	lru memcache.Cache
}

// NewMemory creates a memory cache holding up to capacity entries, each
// valid for ttl.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	return &Memory{lru: memcache.New(capacity, memcache.WithTTL(ttl))}
}

// Get returns a copy of the cached value for key.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	v, ok := m.lru.Get(key)
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Set stores a copy of value under key.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Set(key, append([]byte(nil), value...))
}

// Tiered checks memory first, then disk, promoting disk hits into memory.
type Tiered struct {
	memory Cache
	disk   Cache
}

// NewTiered combines a memory and a disk tier. Either may be nil.
func NewTiered(memory, disk Cache) *Tiered {
	return &Tiered{memory: memory, disk: disk}
}

// Get looks key up in memory, then on disk.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if t.memory != nil {
		if v, ok := t.memory.Get(key); ok {
			metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
			return v, true
		}
	}
	if t.disk != nil {
		if v, ok := t.disk.Get(key); ok {
			metrics.CacheHitsTotal.WithLabelValues("disk").Inc()
			if t.memory != nil {
				t.memory.Set(key, v)
			}
			return v, true
		}
	}
	metrics.CacheMissesTotal.Inc()
	return nil, false
}

// Set writes value to every tier.
func (t *Tiered) Set(key string, value []byte) {
	if t.memory != nil {
		t.memory.Set(key, value)
	}
	if t.disk != nil {
		t.disk.Set(key, value)
	}
}
