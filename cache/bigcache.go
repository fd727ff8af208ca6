package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/thenaterhood/stubdns/models"
)

// bigCacheStore keeps entries as the raw reply bytes plus capture
// metadata, re-decoding on fetch. bigcache's own life window is only a
// backstop; authoritative aging is the per-record TTL check shared with
// the memory backend.
type bigCacheStore struct {
	cache  *bigcache.BigCache
	config CacheConfig

	now func() time.Time
}

type bigCacheEntry struct {
	Raw      []byte    `json:"raw"`
	Server   string    `json:"server"`
	Captured time.Time `json:"captured"`
}

func getBigCache(config CacheConfig) (Cache, error) {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(120*time.Minute))
	if err != nil {
		return nil, err
	}
	return &bigCacheStore{cache: cache, config: config, now: time.Now}, nil
}

func (c *bigCacheStore) Store(resp *models.Response) error {
	if !storable(resp) || resp.Raw == nil {
		return nil
	}

	value, err := json.Marshal(bigCacheEntry{
		Raw:      resp.Raw,
		Server:   resp.Server,
		Captured: resp.Captured,
	})
	if err != nil {
		return err
	}

	return c.cache.Set(resp.Questions[0].CacheKey(), value)
}

func (c *bigCacheStore) Fetch(q models.Question) (*models.Response, error) {
	timer := c.config.Metrics.GetCacheReadTimer()
	defer c.config.Metrics.ObserveTimer(timer)

	raw, err := c.cache.Get(q.CacheKey())
	if err == bigcache.ErrEntryNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry bigCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}

	resp := models.ParseResponse(entry.Raw, entry.Server, entry.Captured)
	if resp.Error != "" || !fresh(resp, c.now()) {
		c.cache.Delete(q.CacheKey())
		return nil, nil
	}
	return resp, nil
}

func (c *bigCacheStore) Clear() error {
	return c.cache.Reset()
}
