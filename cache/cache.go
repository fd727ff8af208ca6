// Package cache stores the most recent successful response per
// question, aged out by the smallest remaining record TTL on lookup.
package cache

import (
	"errors"
	"log/slog"
	"time"

	"github.com/thenaterhood/stubdns/metrics"
	"github.com/thenaterhood/stubdns/models"
)

// Backend names for CacheConfig.
const (
	BackendMemory   = "memory"
	BackendBigCache = "bigcache"
)

type CacheConfig struct {
	Enable  bool
	Backend string
	Logger  *slog.Logger
	Metrics metrics.MetricsInterface
}

type Cache interface {
	// Store keeps resp as the entry for its first question,
	// overwriting any previous entry. Responses with an error, a
	// non-NoError rcode or no question are dropped.
	Store(resp *models.Response) error
	// Fetch returns the stored response for q, or nil on miss. An
	// entry whose records have any elapsed TTL is evicted and
	// reported as a miss.
	Fetch(q models.Question) (*models.Response, error)
	// Clear drops every entry.
	Clear() error
}

var ErrUnknownBackend = errors.New("unknown cache backend")

func GetCache(config CacheConfig) (Cache, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.DummyMetrics{}
	}
	if !config.Enable {
		return &DummyCache{}, nil
	}
	switch config.Backend {
	case BackendBigCache:
		return getBigCache(config)
	case BackendMemory, "":
		return newMemoryCache(config), nil
	}
	return &DummyCache{}, ErrUnknownBackend
}

// storable reports whether resp may enter the cache.
func storable(resp *models.Response) bool {
	return resp != nil &&
		resp.Error == "" &&
		resp.Header.RCode == models.RCodeNoError &&
		len(resp.Questions) > 0
}

// fresh reports whether every record in resp still has TTL remaining
// at now, measured from the capture time.
func fresh(resp *models.Response, now time.Time) bool {
	var elapsed uint32
	if d := now.Sub(resp.Captured); d > 0 {
		elapsed = uint32(d / time.Second)
	}
	for _, rr := range resp.Records() {
		if rr.TTL <= elapsed {
			return false
		}
	}
	return true
}
