// Package cache provides an optional Redis-backed cache for scan results.
// The detection engine itself is stateless; caching identical (text,
// options) pairs is purely a service-layer optimization.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/egressguard/egressguard/internal/config"
	"github.com/egressguard/egressguard/internal/detect"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResultCache handles Redis-based caching of detection results.
type ResultCache struct {
	client *redis.Client
	config config.CacheConfig
	logger *zap.Logger
	hits   int64
	misses int64
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New creates a new Redis-backed result cache and verifies connectivity.
func New(cfg config.CacheConfig, logger *zap.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = cfg.MinIdleConns

	cache := &ResultCache{
		client: redis.NewClient(opts),
		config: cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cache.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Result cache initialized",
		zap.String("redis_url", maskRedisURL(cfg.RedisURL)),
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Duration("default_ttl", cfg.DefaultTTL))

	return cache, nil
}

// Key derives the cache key from the text and the canonical options.
// Only the digest touches Redis; the text itself is never stored.
func Key(text string, opts *detect.ScanOptions) string {
	h := sha256.New()
	h.Write([]byte(text))
	if opts != nil {
		if encoded, err := json.Marshal(opts); err == nil {
			h.Write(encoded)
		}
	}
	return "egressguard:scan:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*detect.DetectionResult, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	} else if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var result detect.DetectionResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		// A corrupt entry is treated as a miss and overwritten on Set
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.hits, 1)
	c.logger.Debug("Cache hit", zap.String("key", key))
	return &result, nil
}

// Set stores a result under key with the configured TTL. Raw finding
// values are excluded by the result's own serialization rules.
func (c *ResultCache) Set(ctx context.Context, key string, result *detect.DetectionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}

	return nil
}

// Stats returns hit/miss counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}

// Close releases the Redis connection pool.
func (c *ResultCache) Close() error {
	return c.client.Close()
}

// maskRedisURL hides credentials before the URL reaches a log line.
func maskRedisURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "redis://***"
	}
	if u.User != nil {
		u.User = url.UserPassword("***", "***")
	}
	return u.String()
}
