package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

const scanBatch = 100

// CacheConfig pairs a key namespace with how long its entries live
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// Only public catalog data is cached. Accounts, roles and course ownership
// are read fresh by the authorization layer.
var (
	CourseCacheConfig   = CacheConfig{TTL: 5 * time.Minute, Prefix: "course:"}
	CategoryCacheConfig = CacheConfig{TTL: 30 * time.Minute, Prefix: "category:"}
	StatsCacheConfig    = CacheConfig{TTL: 2 * time.Minute, Prefix: "stats:"}
)

// CacheHelper stores JSON values under one key namespace. A helper without a
// client misses on every read and drops every write.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

func (c *CacheHelper) key(k string) string {
	return c.prefix + k
}

// Get decodes the entry stored under key into dest
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheNotFound
	case err != nil:
		return fmt.Errorf("cache read failed: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode failed: %w", err)
	}
	return nil
}

// Set encodes value and stores it for ttl
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	return c.client.Set(ctx, c.key(key), raw, ttl).Err()
}

// Delete drops the given keys in one round trip
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.client.Del(ctx, full...).Err()
}

// InvalidatePattern drops every key in the namespace matching pattern. Keys
// are found with SCAN and removed in pipelined batches.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	match := c.key(pattern)
	pipe := c.client.Pipeline()
	queued := 0

	iter := c.client.Scan(ctx, 0, match, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			pipe.Del(ctx, batch...)
			queued++
			batch = make([]string, 0, scanBatch)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan of %q failed: %w", match, err)
	}
	if len(batch) > 0 {
		pipe.Del(ctx, batch...)
		queued++
	}
	if queued == 0 {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache delete of %q failed: %w", match, err)
	}
	return nil
}

// CacheOrExecute fills dest from the cache, or from fetch on a miss and then
// stores the fetched value. dest always receives the JSON form of the value so
// hits and misses decode identically. Fetch errors are never cached.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache read failed, falling back to datastore", "error", err, "key", c.key(key))
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	if c.client != nil {
		if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
			slog.WarnContext(ctx, "Cache write failed", "error", err, "key", c.key(key))
		}
	}
	return json.Unmarshal(raw, dest)
}

// CacheManager holds one helper per catalog namespace
type CacheManager struct {
	client   *redis.Client
	Course   *CacheHelper
	Category *CacheHelper
	Stats    *CacheHelper
}

// NewCacheManager builds the catalog helpers. A nil client yields a manager
// whose helpers never store anything.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:   client,
		Course:   NewCacheHelper(client, CourseCacheConfig.Prefix),
		Category: NewCacheHelper(client, CategoryCacheConfig.Prefix),
		Stats:    NewCacheHelper(client, StatsCacheConfig.Prefix),
	}
}

func (cm *CacheManager) Enabled() bool {
	return cm.client != nil
}

func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
