package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestLRUGetAdd(t *testing.T) {
	c := New[string, int](3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache returned ok")
	}
	c.Add("a", 1)
	c.Add("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}

	// Replace keeps the size.
	if c.Add("a", 10) {
		t.Error("replacing an entry reported an eviction")
	}
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after replace = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	c.Get("a") // b is now the oldest

	if !c.Add("d", 4) {
		t.Fatal("Add over capacity did not evict")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing after eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUPurge(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.Add(i, i)
	}
	c.Get(1)

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("Get(1) after Purge returned ok")
	}
	if s := c.Stats(); s.Hits != 1 {
		t.Errorf("Purge reset hits to %d", s.Hits)
	}
	// The list must be usable after a purge.
	c.Add(7, 7)
	if v, ok := c.Get(7); !ok || v != 7 {
		t.Error("Add after Purge failed")
	}
}

func TestLRUMinimumCapacity(t *testing.T) {
	c := New[int, int](0)
	c.Add(1, 1)
	c.Add(2, 2)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(2); !ok {
		t.Error("newest entry missing")
	}
}

func TestLRUStats(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("z")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Len != 1 || s.Capacity != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUConcurrent(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				k := strconv.Itoa((g*31 + i) % 100)
				c.Add(k, i)
				c.Get(k)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func BenchmarkLRUGet(b *testing.B) {
	c := New[string, int](1000)
	for i := range 100 {
		c.Add(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for b.Loop() {
		c.Get("50")
	}
}

func BenchmarkLRUAdd(b *testing.B) {
	c := New[string, int](64)
	i := 0

	b.ResetTimer()
	for b.Loop() {
		c.Add(strconv.Itoa(i%100), i)
		i++
	}
}
