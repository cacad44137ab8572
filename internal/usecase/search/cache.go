package search

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// responseCache is the process-wide TTL cache for computed responses.
// Entries are immutable once stored and replaced whole, so concurrent
// readers never observe a partial write; expiry is the only invalidation.
type responseCache struct {
	cache *ristretto.Cache[string, *Response]
	ttl   time.Duration
}

func newResponseCache(maxEntries int, ttl time.Duration) (*responseCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Response]{
		NumCounters: int64(maxEntries) * 10,
		MaxCost:     int64(maxEntries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	return &responseCache{cache: c, ttl: ttl}, nil
}

func (c *responseCache) get(key string) (*Response, bool) {
	return c.cache.Get(key)
}

func (c *responseCache) set(key string, resp *Response) {
	c.cache.SetWithTTL(key, resp, 1, c.ttl)
}

// wait flushes pending writes; used by tests and shutdown.
func (c *responseCache) wait() {
	c.cache.Wait()
}

func (c *responseCache) close() {
	c.cache.Close()
}
