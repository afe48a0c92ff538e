package bom

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed breakdowns in Redis for the presentational read path.
// A nil Cache disables caching without changing caller code.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func costKey(productID int64) string {
	return fmt.Sprintf("bom:cost:%d", productID)
}

// Get returns the cached breakdown or nil on a miss.
func (c *Cache) Get(ctx context.Context, productID int64) (*Breakdown, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, costKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var b Breakdown
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Set stores the breakdown with the configured TTL.
func (c *Cache) Set(ctx context.Context, productID int64, b Breakdown) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, costKey(productID), raw, c.ttl).Err()
}

// Invalidate drops the cached breakdown for a product.
func (c *Cache) Invalidate(ctx context.Context, productID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, costKey(productID)).Err()
}
