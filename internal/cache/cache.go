// Package cache memoizes derived values, such as projected boards, for a
// bounded time.
package cache

import (
	"sync"
	"time"
)

// Cache is a key-value store with per-entry expiry.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the cache default applies.
	Set(key K, value V, ttl time.Duration)

	// GetOrCompute returns the cached value or stores and returns compute().
	GetOrCompute(key K, compute func() V) V

	// Len returns the number of non-expired entries.
	Len() int

	// PurgeExpired removes expired entries.
	PurgeExpired()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// TTLCache is a goroutine-safe map-backed Cache. Expired entries are dropped
// lazily on access or by PurgeExpired. When MaxEntries is reached, expired
// entries are purged first and, if that is not enough, the cache is reset.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Options controls construction of a TTLCache.
type Options struct {
	// TTL is the default lifetime of an entry. Zero means entries never expire.
	TTL time.Duration
	// MaxEntries bounds the map. Zero means unbounded.
	MaxEntries int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New constructs a TTLCache.
func New[K comparable, V any](opts Options) *TTLCache[K, V] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TTLCache[K, V]{
		items:      make(map[K]entry[V]),
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		now:        now,
	}
}

func (c *TTLCache[K, V]) live(e entry[V]) bool {
	return e.expiresAt.IsZero() || c.now().Before(e.expiresAt)
}

// Get implements Cache.Get.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || !c.live(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, ttl)
}

func (c *TTLCache[K, V]) setLocked(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.purgeLocked()
		if len(c.items) >= c.maxEntries {
			c.items = make(map[K]entry[V])
		}
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
}

// GetOrCompute implements Cache.GetOrCompute. compute runs under the write
// lock, so concurrent misses on one key compute once.
func (c *TTLCache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok && c.live(e) {
		return e.value
	}
	v := compute()
	c.setLocked(key, v, 0)
	return v
}

// Len implements Cache.Len.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, e := range c.items {
		if c.live(e) {
			count++
		}
	}
	return count
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *TTLCache[K, V]) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()
}

func (c *TTLCache[K, V]) purgeLocked() {
	for k, e := range c.items {
		if !c.live(e) {
			delete(c.items, k)
		}
	}
}

var _ Cache[string, int] = (*TTLCache[string, int])(nil)
