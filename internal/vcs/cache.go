package vcs

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached branch result stays valid.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	branch string
	ok     bool
	at     time.Time
}

// CachedResolver memoizes results per working directory for a short TTL
// so one resolution per heartbeat does not mean one process spawn or
// filesystem walk per heartbeat. Misses are cached too, a directory
// without a repository stays without one. Safe for concurrent use.
type CachedResolver struct {
	inner Resolver
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	nowFunc func() time.Time // for testing
}

// Cached wraps a resolver with a TTL cache. A ttl <= 0 uses the default.
func Cached(inner Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		nowFunc: time.Now,
	}
}

// Resolve returns the cached result for dir when fresh, otherwise asks
// the inner resolver and stores the outcome.
func (c *CachedResolver) Resolve(dir string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if e, exists := c.entries[dir]; exists && now.Sub(e.at) < c.ttl {
		return e.branch, e.ok
	}

	branch, ok := c.inner.Resolve(dir)
	c.entries[dir] = cacheEntry{branch: branch, ok: ok, at: now}
	return branch, ok
}
