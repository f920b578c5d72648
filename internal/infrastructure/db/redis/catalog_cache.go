package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
)

const (
	catalogKey = "sweets:catalog"
	catalogTTL = 30 * time.Second
)

// CatalogCache stores the serialized catalog listing in Redis. A short TTL
// bounds staleness; every inventory write invalidates the entry eagerly.
type CatalogCache struct {
	client *redis.Client
}

func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

func (c *CatalogCache) GetList(ctx context.Context) ([]byte, error) {
	payload, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrCacheMiss
		}
		return nil, fmt.Errorf("catalog cache get: %w", err)
	}
	return payload, nil
}

func (c *CatalogCache) SetList(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, catalogKey, payload, catalogTTL).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
