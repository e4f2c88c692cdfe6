package dispatch

import (
	"sync"
	"testing"
)

func TestCacheBuildsOncePerKey(t *testing.T) {
	c := NewCache()
	builds := 0
	build := func() Resolver {
		builds++
		return &errorResolver{diag: "x"}
	}

	key := CacheKey{App: "polls", Module: "polls/index", Function: "process"}
	a := c.Get(key, build)
	b := c.Get(key, build)
	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
	if a != b {
		t.Error("same key should return the same resolver")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestCacheDistinctKeys(t *testing.T) {
	c := NewCache()
	c.Get(CacheKey{App: "a", Module: "a/x", Function: "f"}, func() Resolver { return &errorResolver{} })
	c.Get(CacheKey{App: "a", Module: "a/x", Function: "g"}, func() Resolver { return &errorResolver{} })
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheFlush(t *testing.T) {
	c := NewCache()
	key := CacheKey{App: "a", Module: "a/x", Function: "f"}
	builds := 0
	build := func() Resolver {
		builds++
		return &errorResolver{}
	}
	c.Get(key, build)
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len() after Flush = %d", c.Len())
	}
	c.Get(key, build)
	if builds != 2 {
		t.Errorf("builds = %d, want rebuild after Flush", builds)
	}
}

func TestCacheConcurrentSingleBuild(t *testing.T) {
	c := NewCache()
	key := CacheKey{App: "a", Module: "a/x", Function: "f"}

	var mu sync.Mutex
	builds := 0
	build := func() Resolver {
		mu.Lock()
		builds++
		mu.Unlock()
		return &errorResolver{}
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get(key, build)
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("builds = %d, want exactly 1 under concurrency", builds)
	}
}
