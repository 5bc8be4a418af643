// Package cache provides the insertion-ordered, version-counted path
// caches behind directories and previews. Caches are main-thread-only;
// the version counter is what lets worker results detect a drop.
package cache

import "container/list"

type entry[V any] struct {
	key   string
	value V
}

// Cache maps path → value, preserving insertion order. Dropping the whole
// cache bumps the version; results submitted against an older version are
// discarded at process time.
type Cache[V any] struct {
	ll      *list.List
	items   map[string]*list.Element
	version uint64
	destroy func(V)
}

// New creates a cache. destroy is called for each evicted value and may
// be nil.
func New[V any](destroy func(V)) *Cache[V] {
	return &Cache[V]{
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		destroy: destroy,
	}
}

// Get returns the value for key and whether it is present.
func (c *Cache[V]) Get(key string) (V, bool) {
	if el, ok := c.items[key]; ok {
		return el.Value.(entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Set inserts or replaces the value for key. A replaced value is
// destroyed.
func (c *Cache[V]) Set(key string, value V) {
	if el, ok := c.items[key]; ok {
		old := el.Value.(entry[V])
		el.Value = entry[V]{key: key, value: value}
		if c.destroy != nil {
			c.destroy(old.value)
		}
		return
	}
	c.items[key] = c.ll.PushBack(entry[V]{key: key, value: value})
}

// Delete removes key, destroying its value. Missing keys are ignored.
func (c *Cache[V]) Delete(key string) {
	el, ok := c.items[key]
	if !ok {
		return
	}
	c.ll.Remove(el)
	delete(c.items, key)
	if c.destroy != nil {
		c.destroy(el.Value.(entry[V]).value)
	}
}

// Len returns the number of cached values.
func (c *Cache[V]) Len() int { return c.ll.Len() }

// Version returns the current generation counter.
func (c *Cache[V]) Version() uint64 { return c.version }

// Drop destroys every value and bumps the version so in-flight results
// against the old generation are discarded.
func (c *Cache[V]) Drop() {
	c.version++
	for el := c.ll.Front(); el != nil; el = el.Next() {
		if c.destroy != nil {
			c.destroy(el.Value.(entry[V]).value)
		}
	}
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Each calls fn for every value in insertion order.
func (c *Cache[V]) Each(fn func(key string, value V)) {
	for el := c.ll.Front(); el != nil; el = el.Next() {
		e := el.Value.(entry[V])
		fn(e.key, e.value)
	}
}
