package internal

import (
	"sync"
	"testing"
)

func TestRecordCache_GetPut(t *testing.T) {
	c := newRecordCache[string]()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Put("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get(k) = %q, %v; want v, true", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestRecordCache_ClearIsWholesale(t *testing.T) {
	c := newRecordCache[int]()
	c.Put("a", 1)
	c.Put("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entries should be gone after Clear")
	}
}

func TestRecordCache_ConcurrentAccess(t *testing.T) {
	c := newRecordCache[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("k", n)
				c.Get("k")
				if j%50 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestRecordCache_InstancesDoNotShareState(t *testing.T) {
	a := newRecordCache[string]()
	b := newRecordCache[string]()

	a.Put("k", "v")
	if _, ok := b.Get("k"); ok {
		t.Error("caches must not share state across instances")
	}
}
