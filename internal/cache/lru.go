// Package cache provides a bounded least-recently-used map.
//
//	frames := cache.New[key, *Frame](32)
//	frames.Add(k, f)
//	f, ok := frames.Get(k)
//
// LRU is safe for concurrent use and must not be copied after creation.
package cache

import "sync"

// node is an entry in the recency list. The head is the most recently used.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// LRU holds at most Capacity entries, evicting the least recently used one
// when full.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	head     *node[K, V]
	tail     *node[K, V]
	capacity int

	hits, misses uint64
}

// New creates an LRU holding up to capacity entries. A capacity below 1 is
// treated as 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	capacity = max(capacity, 1)
	return &LRU[K, V]{
		entries:  make(map[K]*node[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.moveToFront(n)
	return n.value, true
}

// Add stores value under key, replacing any previous value. It reports
// whether an older entry was evicted to make room.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return false
	}

	if len(c.entries) >= c.capacity {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.entries, oldest.key)
		evicted = true
	}

	n := &node[K, V]{key: key, value: value}
	c.pushFront(n)
	c.entries[key] = n
	return evicted
}

// Purge removes every entry. Hit and miss counters are kept.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.head, c.tail = nil, nil
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats contains cache statistics.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Capacity: c.capacity, Hits: c.hits, Misses: c.misses}
}

// Caller must hold c.mu for the list helpers below.

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
