package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultMaxWorkers = 8

	// Cached URLs are dropped once a quarter of their lifetime remains.
	cacheLifetimeNumerator   = 3
	cacheLifetimeDenominator = 4
)

// URLCache is satisfied by the in-memory and redis caches.
type URLCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, url string, expiry time.Time)
}

// Signer hands out signed GET URLs, reusing cached ones while they are
// still comfortably valid.
type Signer struct {
	store ObjectStore
	cache URLCache
	ttl   time.Duration
}

func NewSigner(store ObjectStore, cache URLCache, ttl time.Duration) *Signer {
	return &Signer{store: store, cache: cache, ttl: ttl}
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) URL(ctx context.Context, key string) (string, error) {
	return s.URLWithTTL(ctx, key, s.ttl)
}

// URLWithTTL signs key for ttl. Only URLs signed for the default TTL are
// cached.
func (s *Signer) URLWithTTL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	cacheable := s.cache != nil && ttl == s.ttl
	if cacheable {
		if url, ok := s.cache.Get(ctx, key); ok {
			return url, nil
		}
	}

	url, err := s.store.SignedURL(ctx, key, ttl)
	if err != nil {
		return "", err
	}

	if cacheable {
		keep := ttl * cacheLifetimeNumerator / cacheLifetimeDenominator
		s.cache.Set(ctx, key, url, time.Now().Add(keep))
	}

	return url, nil
}

// BatchResult is the outcome of signing one key.
type BatchResult struct {
	Key   string
	URL   string
	Error string
}

// BatchURLs signs keys concurrently with at most maxWorkers goroutines.
// Failures are reported per key; the map holds only successes.
func (s *Signer) BatchURLs(ctx context.Context, keys []string, maxWorkers int) (map[string]string, []BatchResult) {
	urls := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return urls, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if maxWorkers > len(keys) {
		maxWorkers = len(keys)
	}

	jobs := make(chan string, len(keys))
	results := make(chan BatchResult, len(keys))

	var wg sync.WaitGroup

	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				select {
				case <-ctx.Done():
					results <- BatchResult{Key: key, Error: ctx.Err().Error()}
					continue
				default:
				}

				func() {
					defer func() {
						if r := recover(); r != nil {
							results <- BatchResult{Key: key, Error: fmt.Sprintf("panic: %v", r)}
						}
					}()

					url, err := s.URL(ctx, key)
					if err != nil {
						results <- BatchResult{Key: key, Error: err.Error()}
						return
					}
					results <- BatchResult{Key: key, URL: url}
				}()
			}
		}()
	}

	for _, key := range keys {
		jobs <- key
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []BatchResult
	for res := range results {
		if res.Error != "" {
			failed = append(failed, res)
			continue
		}
		urls[res.Key] = res.URL
	}

	return urls, failed
}
