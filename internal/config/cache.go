package config

import "sync/atomic"

// Cache holds the currently active Config behind an atomic pointer: no
// request ever observes a partially-swapped tree, without any lock of its
// own — a single owning reference swapped atomically at the reload point.
type Cache struct {
	ptr atomic.Pointer[Config]
}

// NewCache builds a Cache seeded with the given initial Config.
func NewCache(initial *Config) *Cache {
	c := &Cache{}
	c.ptr.Store(initial)
	return c
}

// Current returns the active Config.
func (c *Cache) Current() *Config {
	return c.ptr.Load()
}

// Swap atomically replaces the active Config.
func (c *Cache) Swap(next *Config) {
	c.ptr.Store(next)
}
