package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 500
)

// Config configures a [TTL] cache.
type Config struct {
	TTL           time.Duration
	MaxSize       int
	SweepInterval time.Duration // defaults to TTL/2
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
	Expired   int64
	Size      int
	TTL       time.Duration
}

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// TTL is a concurrency-safe string-keyed cache whose entries expire after a fixed duration.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	ttl     time.Duration
	maxSize int
	sweep   time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
	expired   int64
}

// New creates a new [TTL] cache.
func New[V any](c Config) *TTL[V] {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = c.TTL / 2
	}

	return &TTL[V]{
		entries: make(map[string]*entry[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		sweep:   c.SweepInterval,
		now:     time.Now,
	}
}

// Get retrieves a live entry.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.isExpired(e) {
		atomic.AddInt64(&c.misses, 1)
		var zero V
		return zero, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores value under key, evicting the oldest entry when the cache is full.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &entry[V]{value: value, cachedAt: c.now()}
	atomic.AddInt64(&c.sets, 1)
}

// Delete removes key from the cache
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		atomic.AddInt64(&c.deletes, 1)
	}
}

// Clear removes all entries
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *TTL[V]) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Expired:   atomic.LoadInt64(&c.expired),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *TTL[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if c.isExpired(e) {
			delete(c.entries, k)
			n++
		}
	}
	atomic.AddInt64(&c.expired, int64(n))
	return n
}

// Start runs the janitor until ctx is done or [TTL.Close] is called.
// Calling Start more than once has no effect.
func (c *TTL[V]) Start(ctx context.Context) {
	c.once.Do(func() {
		stop, done := make(chan struct{}), make(chan struct{})
		c.mu.Lock()
		c.stop, c.done = stop, done
		c.mu.Unlock()
		go c.janitor(ctx, stop, done)
	})
}

// Close stops the janitor and waits for it to exit.
func (c *TTL[V]) Close() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop = nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (c *TTL[V]) janitor(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *TTL[V]) isExpired(e *entry[V]) bool {
	return c.now().Sub(e.cachedAt) > c.ttl
}

// evictOldest drops the entry cached first. Caller holds the write lock.
func (c *TTL[V]) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.cachedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.cachedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		atomic.AddInt64(&c.evictions, 1)
	}
}
