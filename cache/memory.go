package cache

import (
	"sync"
	"time"

	"github.com/thenaterhood/stubdns/models"
)

// memoryCache is the reference backend: a mutex-guarded map keyed by
// the canonical question key. Lookup and the staleness check run under
// the same lock so check-then-evict is atomic.
type memoryCache struct {
	entries map[string]*models.Response
	config  CacheConfig
	mutex   sync.Mutex

	// now is swapped out by tests to age entries deterministically.
	now func() time.Time
}

func newMemoryCache(config CacheConfig) *memoryCache {
	return &memoryCache{
		entries: map[string]*models.Response{},
		config:  config,
		now:     time.Now,
	}
}

func (c *memoryCache) Store(resp *models.Response) error {
	if !storable(resp) {
		return nil
	}
	key := resp.Questions[0].CacheKey()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = resp
	return nil
}

func (c *memoryCache) Fetch(q models.Question) (*models.Response, error) {
	timer := c.config.Metrics.GetCacheReadTimer()
	defer c.config.Metrics.ObserveTimer(timer)

	key := q.CacheKey()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	resp, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !fresh(resp, c.now()) {
		delete(c.entries, key)
		return nil, nil
	}
	return resp, nil
}

func (c *memoryCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = map[string]*models.Response{}
	return nil
}
