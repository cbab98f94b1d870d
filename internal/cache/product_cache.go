// Package cache provides the Redis-backed product snapshot cache used by
// the display read path. Stock mutations invalidate; reads are bounded
// by the TTL the ledger passes in.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings a Redis instance.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

type ProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func productKey(productID string) string {
	return "product:" + productID
}

// Get returns the cached product or (nil, nil) on a miss.
func (c *ProductCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var snapshot productSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	product, err := snapshot.toDomain()
	if err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product domain.Product, ttl time.Duration) error {
	data, err := json.Marshal(fromDomain(product))
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, productKey(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, productID string) error {
	if err := c.rdb.Del(ctx, productKey(productID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
