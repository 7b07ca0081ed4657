package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dyluth/storefront/pkg/shop"
	"github.com/redis/go-redis/v9"
)

// CacheKey returns the Redis key holding the catalog snapshot.
// Pattern: storefront:{namespace}:catalog
func CacheKey(namespace string) string {
	return fmt.Sprintf("storefront:%s:catalog", namespace)
}

// RedisCache wraps a Source with a Redis snapshot so repeated invocations
// within the TTL reuse one product list.
//
// Cache failures never fail a load: they are logged and the source is used.
type RedisCache struct {
	source    Source
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewRedisCache creates a caching source. ttl must be positive.
func NewRedisCache(source Source, redisOpts *redis.Options, namespace string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source cannot be nil")
	}
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		source:    source,
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// ListProducts returns the cached snapshot if present, otherwise loads from
// the source and stores the result.
func (c *RedisCache) ListProducts(ctx context.Context) ([]shop.Product, error) {
	key := CacheKey(c.namespace)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var products []shop.Product
		if err := json.Unmarshal(data, &products); err == nil {
			c.logger.Debug("catalog cache hit", slog.Int("products", len(products)))
			return products, nil
		}
		c.logger.Warn("catalog cache entry unreadable, reloading", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("catalog cache unavailable", slog.String("error", err.Error()))
	}

	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(products)
	if err != nil {
		return products, nil
	}
	if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to store catalog snapshot", slog.String("error", err.Error()))
	}
	return products, nil
}

// Invalidate drops the snapshot, e.g. after a product is created.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, CacheKey(c.namespace)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}
