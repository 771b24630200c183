package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheSwapIsVisibleToCurrent(t *testing.T) {
	first := &Config{Socket: "/a"}
	second := &Config{Socket: "/b"}

	c := NewCache(first)
	assert.Same(t, first, c.Current())

	c.Swap(second)
	assert.Same(t, second, c.Current())
}

// TestCacheConcurrentAccess exercises the "no request observes a
// partially-swapped tree" property under concurrent readers and a writer.
func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(&Config{Socket: "/a"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := c.Current()
			assert.NotNil(t, cfg)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Swap(&Config{Socket: "/b"})
	}()
	wg.Wait()
}
