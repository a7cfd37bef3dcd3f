package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix           = "mediaflow:signed-url:"
	redisPingTimeout         = 3 * time.Second
	errFailedParseRedisURL   = "failed to parse REDIS_URL: %w"
	errFailedConnectRedisFmt = "failed to connect to redis: %w"
)

// RedisCache shares signed URLs between service instances.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to url and pings it once.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf(errFailedParseRedisURL, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf(errFailedConnectRedisFmt, err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get treats any redis failure as a miss; the caller signs a fresh URL.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	url, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("redis get %s: %v", key, err)
		}
		return "", false
	}
	return url, true
}

func (r *RedisCache) Set(ctx context.Context, key string, url string, expiry time.Time) {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, url, ttl).Err(); err != nil {
		log.Printf("redis set %s: %v", key, err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
