package reqcache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// DefaultEntryTTL bounds how long a resolved computation is shared.
	DefaultEntryTTL = 30 * time.Second
	// KeyBucket is the coarse time window folded into cache keys, so
	// identical requests within the window collapse to one computation.
	KeyBucket = 30 * time.Minute
)

var (
	hitCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_reqcache_hits_total",
		Help: "Requests that attached to an existing in-flight or cached computation.",
	})
	missCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_reqcache_misses_total",
		Help: "Requests that started a new computation.",
	})
)

type ComputeFn func() (any, error)

type entry struct {
	done chan struct{}
	val  any
	err  error
}

// Cache deduplicates concurrent identical requests: at most one
// computation is in flight per key, and every caller for that key shares
// its outcome. Successful entries expire after the TTL; failed entries
// are evicted immediately so the next caller retries instead of replaying
// a cached error.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}
	return &Cache{ttl: ttl, entries: map[string]*entry{}}
}

// GetOrCompute returns the shared result for key, invoking fn exactly
// once per live entry. Lookup and entry creation are atomic under one
// lock. The computation itself runs outside the lock on the first
// caller's goroutine; late arrivals block on the entry until it settles
// or their own ctx is done (the computation itself is never cancelled).
func (c *Cache) GetOrCompute(ctx context.Context, key string, fn ComputeFn) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		hitCounter.Inc()
		select {
		case <-e.done:
			return e.val, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()
	missCounter.Inc()

	e.val, e.err = fn()
	close(e.done)

	if e.err != nil {
		c.remove(key, e)
		return nil, e.err
	}
	time.AfterFunc(c.ttl, func() { c.remove(key, e) })
	return e.val, nil
}

// remove drops the entry only if it is still the one we created, so a
// slow timer cannot evict a newer computation under the same key.
func (c *Cache) remove(key string, e *entry) {
	c.mu.Lock()
	if cur, ok := c.entries[key]; ok && cur == e {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
