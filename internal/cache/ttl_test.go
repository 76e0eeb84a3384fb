package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock returns a controllable clock for expiry tests.
func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var (
		mu  sync.Mutex
		now = start
	)
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		}
}

func TestTTL(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := New[string](Config{})
		if c.ttl != DefaultTTL || c.maxSize != DefaultMaxSize || c.sweep != DefaultTTL/2 {
			t.Errorf("unexpected defaults: ttl=%v max=%d sweep=%v", c.ttl, c.maxSize, c.sweep)
		}
	})

	t.Run("Get and Set", func(t *testing.T) {
		c := New[int](Config{TTL: time.Minute})
		c.Set("a", 1)

		if v, ok := c.Get("a"); !ok || v != 1 {
			t.Errorf("expected 1, got %d (%v)", v, ok)
		}
		if _, ok := c.Get("missing"); ok {
			t.Error("expected miss for missing key")
		}

		stats := c.Stats()
		if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Size != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("expired entries are never returned", func(t *testing.T) {
		c := New[string](Config{TTL: time.Minute})
		now, advance := fakeClock(time.Now())
		c.now = now

		c.Set("k", "v")
		advance(59 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Error("entry should be live before ttl")
		}

		advance(2 * time.Second)
		if _, ok := c.Get("k"); ok {
			t.Error("expired entry returned")
		}
		if c.Len() != 1 {
			t.Error("Get must not delete; eviction belongs to Sweep")
		}

		if n := c.Sweep(); n != 1 {
			t.Errorf("expected 1 swept, got %d", n)
		}
		if c.Len() != 0 || c.Stats().Expired != 1 {
			t.Errorf("expected empty cache after sweep, stats %+v", c.Stats())
		}
	})

	t.Run("evicts oldest when full", func(t *testing.T) {
		c := New[int](Config{TTL: time.Hour, MaxSize: 3})
		now, advance := fakeClock(time.Now())
		c.now = now

		for i := range 3 {
			c.Set(fmt.Sprintf("k%d", i), i)
			advance(time.Second)
		}
		c.Set("k0", 10) // overwrite refreshes k0 without eviction
		advance(time.Second)
		c.Set("k3", 3)

		if _, ok := c.Get("k1"); ok {
			t.Error("k1 was oldest and should have been evicted")
		}
		for _, k := range []string{"k0", "k2", "k3"} {
			if _, ok := c.Get(k); !ok {
				t.Errorf("%s should still be cached", k)
			}
		}
		if c.Stats().Evictions != 1 {
			t.Errorf("expected 1 eviction, got %d", c.Stats().Evictions)
		}
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		c := New[int](Config{})
		c.Set("a", 1)
		c.Set("b", 2)

		c.Delete("a")
		c.Delete("a")
		if c.Stats().Deletes != 1 {
			t.Errorf("expected 1 delete, got %d", c.Stats().Deletes)
		}

		c.Clear()
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d", c.Len())
		}
	})

	t.Run("janitor evicts on interval", func(t *testing.T) {
		c := New[int](Config{TTL: 10 * time.Millisecond, SweepInterval: 5 * time.Millisecond})
		c.Start(context.Background())
		defer c.Close()

		c.Set("a", 1)

		deadline := time.Now().Add(2 * time.Second)
		for c.Len() > 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if c.Len() != 0 {
			t.Error("janitor did not evict the expired entry")
		}
	})

	t.Run("Close is idempotent and stops on context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		c := New[int](Config{TTL: time.Second})
		c.Start(ctx)
		c.Start(ctx)
		cancel()

		c.Close()
		c.Close()

		unstarted := New[int](Config{})
		unstarted.Close()
	})
}
