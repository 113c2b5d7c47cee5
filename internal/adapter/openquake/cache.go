package openquake

import (
	"context"
	"sync"

	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/observability"
)

// CachedFetcher wraps a CurveFetcher with an in-memory LRU cache keyed by
// calculation ID. Hazard calculations are immutable once finished, so a
// cached tensor never goes stale.
type CachedFetcher struct {
	inner   domain.CurveFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.CurveFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchCurveSet(ctx context.Context, calcID string) (domain.CurveSet, error) {
	if cs, ok := c.cache.get(calcID); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return cs, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	cs, err := c.inner.FetchCurveSet(ctx, calcID)
	if err != nil {
		return cs, err
	}
	// Only cache complete tensors so a transient empty answer can be retried.
	if !cs.IsReference() {
		c.cache.put(calcID, cs)
	}
	return cs, nil
}

// lruCache is a simple thread-safe LRU cache for curve sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.CurveSet
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.CurveSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.CurveSet{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.CurveSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
