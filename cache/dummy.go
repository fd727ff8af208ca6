package cache

import (
	"github.com/thenaterhood/stubdns/models"
)

// DummyCache is the disabled-cache backend: stores nothing, always
// misses.
type DummyCache struct{}

func (c *DummyCache) Store(*models.Response) error                    { return nil }
func (c *DummyCache) Fetch(models.Question) (*models.Response, error) { return nil, nil }
func (c *DummyCache) Clear() error                                    { return nil }
