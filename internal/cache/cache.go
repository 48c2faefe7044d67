// Package cache stores JSON payloads in Redis under generation-scoped namespaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/matita-boutique/internal/obs"
)

// JSON wraps Redis helpers for JSON payloads within one namespace.
// Bumping the namespace generation orphans every key written before it,
// so invalidation never has to scan.
type JSON struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewJSON constructs a namespaced cache. A nil client yields a cache that always misses.
func NewJSON(client *redis.Client, namespace string, ttl time.Duration) *JSON {
	return &JSON{client: client, namespace: namespace, ttl: ttl}
}

func (c *JSON) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *JSON) generationKey() string {
	return c.namespace + ":gen"
}

// Key returns the fully qualified key for name under the current generation.
func (c *JSON) Key(ctx context.Context, name string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return c.namespace + ":" + strconv.FormatInt(gen, 10) + ":" + name, nil
}

// Get unmarshals a cached payload into dst. It reports whether the key existed.
func (c *JSON) Get(ctx context.Context, name string, dst any) (bool, error) {
	if !c.enabled() || name == "" {
		return false, nil
	}
	key, err := c.Key(ctx, name)
	if err != nil {
		return false, err
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			obs.IncCacheLookup(c.namespace, false)
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	obs.IncCacheLookup(c.namespace, true)
	return true, nil
}

// Set serialises v as JSON and stores it with the configured TTL.
func (c *JSON) Set(ctx context.Context, name string, v any) error {
	if !c.enabled() || name == "" {
		return nil
	}
	key, err := c.Key(ctx, name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate moves the namespace to a new generation.
func (c *JSON) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, c.generationKey()).Err()
}
