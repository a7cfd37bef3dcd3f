// Package cache keeps signed object URLs around until shortly before they
// expire, in process or in redis.
package cache

import (
	"context"
	"sync"
	"time"
)

type signedURL struct {
	url     string
	expires time.Time
}

// URLCache is the in-process signed URL cache used when no redis is
// configured. Expired entries are misses; RunJanitor reclaims them.
type URLCache struct {
	mu      sync.RWMutex
	entries map[string]signedURL
	now     func() time.Time
}

func NewURLCache() *URLCache {
	return &URLCache{
		entries: make(map[string]signedURL),
		now:     time.Now,
	}
}

func (c *URLCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		return "", false
	}
	return e.url, true
}

func (c *URLCache) Set(_ context.Context, key string, url string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = signedURL{url: url, expires: expiry}
}

// Prune drops expired entries and reports how many were removed.
func (c *URLCache) Prune() int {
	cutoff := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !cutoff.Before(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *URLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RunJanitor prunes every interval until ctx is done.
func (c *URLCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}
