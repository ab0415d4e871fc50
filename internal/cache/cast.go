// Package cache holds the short-lived caches in front of the content API
// and the image renderer.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/iconidentify/farlinker/internal/domain"
)

const (
	// DefaultCastTTL is how long a fetched cast is served from memory.
	DefaultCastTTL = 5 * time.Minute
	// DefaultCastCapacity bounds the number of cached casts.
	DefaultCastCapacity = 1000

	shortHashLen = 8
)

// CastCache is a bounded TTL cache of fetched casts. When full it evicts the
// oldest inserted entry; reads do not refresh an entry's position.
type CastCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	order    *list.List
	entries  map[string]*list.Element
	now      func() time.Time
}

type castEntry struct {
	key        string
	post       *domain.Post
	insertedAt time.Time
}

// NewCastCache creates a cast cache. Non-positive arguments fall back to defaults.
func NewCastCache(ttl time.Duration, capacity int) *CastCache {
	if ttl <= 0 {
		ttl = DefaultCastTTL
	}
	if capacity <= 0 {
		capacity = DefaultCastCapacity
	}
	return &CastCache{
		ttl:      ttl,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *CastCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached cast for key. Expired entries are removed and
// reported as absent.
func (c *CastCache) Get(key string) (*domain.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*castEntry)
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	return entry.post, true
}

// Put stores post under key. Re-inserting a key refreshes it and makes it the
// newest entry.
func (c *CastCache) Put(key string, post *domain.Post) {
	if post == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}

	c.entries[key] = c.order.PushBack(&castEntry{
		key:        key,
		post:       post,
		insertedAt: c.now(),
	})

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*castEntry).key)
	}
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (c *CastCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ShortHash reduces a cast hash to the 8 character short form accepted by the
// upstream URL lookup, returned with a 0x prefix.
func ShortHash(id string) string {
	h := strings.TrimPrefix(strings.TrimPrefix(id, "0x"), "0X")
	if len(h) > shortHashLen {
		h = h[:shortHashLen]
	}
	return "0x" + h
}

// Key builds the cache key for a cast from its author handle and hash.
func Key(handle, id string) string {
	return NormalizeHandle(handle) + ":" + ShortHash(id)
}

// NormalizeHandle lowercases a handle and strips a leading @.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
