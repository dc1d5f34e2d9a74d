/*
Package cache provides an in-process memoization layer for pure calculations.

PURPOSE:
  Working-day and segment calculations run on every pointer-move of a drag
  and on every render. Their inputs rarely change between calls, so results
  are memoized under a hash of the inputs that matter.

DESIGN:
  - Constructor-injected: every Cache is an explicit value. Tests build their
    own with a fake clock; nothing is shared through package state.
  - TTL: entries expire a fixed time after they are written.
  - LRU: once Capacity is reached the least recently used entry is evicted.
  - Soft state: clearing the cache changes latency, never results. Errors
    from the computation are returned and not stored.

USAGE:
  days := cache.New[[]calendar.Date](cache.Options{Name: "working_days"}, metrics)
  key := cache.NewKey("working_days").Time(start).Time(end).Sum()
  result, err := days.Memoize(key, func() ([]calendar.Date, error) { ... })

SEE ALSO:
  - key.go: input hashing
  - metrics.go: Prometheus counters
  - planning/engine.go: the memoized calculations
*/
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultCapacity = 500
	DefaultTTL      = 5 * time.Minute
)

// Options configures a Cache.
type Options struct {
	// Name labels the cache's metrics.
	Name string

	// Capacity is the maximum number of entries (DefaultCapacity when <= 0).
	Capacity int

	// TTL is how long an entry lives (DefaultTTL when 0, never expires when < 0).
	TTL time.Duration

	// Now is the clock (time.Now when nil).
	Now func() time.Time
}

// Cache is a TTL + LRU map from uint64 keys to values.
type Cache[V any] struct {
	opts    Options
	metrics *Metrics

	mu    sync.Mutex
	order *list.List // front = most recently used
	items map[uint64]*list.Element
}

type entry[V any] struct {
	key     uint64
	value   V
	expires time.Time
}

// New creates a cache. metrics may be nil.
func New[V any](opts Options, metrics *Metrics) *Cache[V] {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache[V]{
		opts:    opts,
		metrics: metrics,
		order:   list.New(),
		items:   make(map[uint64]*list.Element),
	}
}

// Name returns the cache's metric label.
func (c *Cache[V]) Name() string { return c.opts.Name }

// Get returns a live entry and marks it recently used.
func (c *Cache[V]) Get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.metrics.miss(c.opts.Name)
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expired(e) {
		c.removeLocked(el)
		c.metrics.expire(c.opts.Name)
		c.metrics.miss(c.opts.Name)
		return zero, false
	}
	c.order.MoveToFront(el)
	c.metrics.hit(c.opts.Name)
	return e.value, true
}

// Put stores a value, evicting the least recently used entry when full.
func (c *Cache[V]) Put(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Time{}
	if c.opts.TTL > 0 {
		expires = c.opts.Now().Add(c.opts.TTL)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.expires = expires
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.opts.Capacity {
		c.removeLocked(c.order.Back())
		c.metrics.evict(c.opts.Name)
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expires: expires})
	c.metrics.size(c.opts.Name, c.order.Len())
}

// Memoize returns the cached value for key, computing and storing it on a miss.
// The computation runs without the lock held; concurrent misses may compute twice.
func (c *Cache[V]) Memoize(key uint64, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry[V])) {
			c.removeLocked(el)
			c.metrics.expire(c.opts.Name)
			removed++
		}
		el = prev
	}
	return removed
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[uint64]*list.Element)
	c.metrics.size(c.opts.Name, 0)
}

// Len returns the number of stored entries, expired ones included until purged.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return !e.expires.IsZero() && !c.opts.Now().Before(e.expires)
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[V])
	delete(c.items, e.key)
	c.metrics.size(c.opts.Name, c.order.Len())
}

// Purger is implemented by every Cache; the api janitor purges through it.
type Purger interface {
	Name() string
	Purge() int
	Clear()
}
