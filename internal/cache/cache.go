package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"messenger/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix        = "user:%s"
	BlockedSendersPrefix = "user:%s:blocked"
)

const (
	UserTTL           = 5 * time.Minute
	BlockedSendersTTL = 10 * time.Minute
)

// UserKey is the cache key of a user profile.
func UserKey(login string) string {
	return fmt.Sprintf(UserKeyPrefix, login)
}

// BlockedSendersKey is the cache key of a viewer's block-list exclusion set.
func BlockedSendersKey(login string) string {
	return fmt.Sprintf(BlockedSendersPrefix, login)
}

// Cache is a nil-safe read-through cache. A Cache with no client never hits.
type Cache struct {
	client *redis.Client
}

// New wraps client; client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Aside loads key into dest, calling load and storing its result on a miss.
// Redis failures degrade to calling load; errors from load are returned as-is.
// It reports whether the value came from the cache.
func (c *Cache) Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) (bool, error) {
	if !c.Enabled() {
		return false, load()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return true, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := load(); err != nil {
		return false, err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return false, nil
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return false, nil
}

// Invalidate removes keys from the cache.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

// InvalidateUser drops every cached entry derived from login.
func (c *Cache) InvalidateUser(ctx context.Context, login string) {
	c.Invalidate(ctx, UserKey(login), BlockedSendersKey(login))
}
