package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

const defaultNamespace = "govledger"

// Cache implements usecase.Cache using Redis. Keys are namespaced so
// several deployments can share one Redis.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache. An empty namespace uses "govledger".
func NewCache(client *redis.Client, namespace string) *Cache {
	if namespace == "" {
		namespace = defaultNamespace
	}

	return &Cache{
		client: client,
		prefix: namespace + ":cache:",
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}

	return val, err
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
