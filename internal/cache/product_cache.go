// Package cache keeps hot product detail reads out of the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gugarden/internal/config"
	"gugarden/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const productKeyPrefix = "product:"

// ProductCache stores product detail payloads by id. Cache failures are
// logged and treated as misses so the database stays authoritative.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*model.Product, bool)
	Set(ctx context.Context, product *model.Product)
	Invalidate(ctx context.Context, ids ...int64)
	Ping(ctx context.Context) error
}

type redisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient builds a client from configuration and checks it responds.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewProductCache creates a Redis-backed product cache.
func NewProductCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ProductCache {
	return &redisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "product_cache").Logger(),
	}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *redisProductCache) Get(ctx context.Context, id int64) (*model.Product, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Int64("product_id", id).Msg("cache read failed")
		}
		return nil, false
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn().Err(err).Int64("product_id", id).Msg("discarding corrupt cache entry")
		c.Invalidate(ctx, id)
		return nil, false
	}

	return &p, true
}

func (c *redisProductCache) Set(ctx context.Context, product *model.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("failed to encode product")
		return
	}

	if err := c.client.Set(ctx, productKey(product.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("cache write failed")
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Int("count", len(keys)).Msg("cache invalidation failed")
	}
}

func (c *redisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

type nopProductCache struct{}

// NewNopProductCache returns a cache that never hits.
func NewNopProductCache() ProductCache {
	return nopProductCache{}
}

func (nopProductCache) Get(context.Context, int64) (*model.Product, bool) { return nil, false }
func (nopProductCache) Set(context.Context, *model.Product)               {}
func (nopProductCache) Invalidate(context.Context, ...int64)              {}
func (nopProductCache) Ping(context.Context) error                        { return nil }
