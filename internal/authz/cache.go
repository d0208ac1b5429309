package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedStore wraps a Store with a short-TTL Redis cache keyed by user ID.
// Every graph write goes through Invalidate, so staleness is bounded by the
// TTL only for writes the process never saw. Concurrent misses for the same
// user collapse into one resolver call.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedStore constructs a CachedStore. A zero or negative TTL disables
// caching and every Resolve goes straight to the inner store.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Resolve returns the cached principal when fresh, falling back to the inner
// store. Cache failures degrade to a direct read; they never fail the
// authorization decision.
func (c *CachedStore) Resolve(ctx context.Context, userID int64) (*Principal, error) {
	if c.ttl <= 0 || c.client == nil {
		return c.inner.Resolve(ctx, userID)
	}

	key := cacheKey(userID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var principal Principal
		if err := json.Unmarshal(payload, &principal); err == nil {
			return &principal, nil
		}
		// Unreadable entry: drop it and resolve fresh.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.Warn("authz cache read", slog.Any("error", err))
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		principal, err := c.inner.Resolve(ctx, userID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(principal); err == nil {
			if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
				c.logger.Warn("authz cache write", slog.Any("error", err))
			}
		}
		return principal, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Principal), nil
}

// Invalidate evicts a user's cached principal. Called by every write that
// changes the role or permission graph for the user.
func (c *CachedStore) Invalidate(ctx context.Context, userIDs ...int64) {
	if c.ttl <= 0 || c.client == nil {
		return
	}
	for _, id := range userIDs {
		if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("authz cache invalidate", slog.Int64("user_id", id), slog.Any("error", err))
		}
	}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("authz:principal:%d", userID)
}

var _ Store = (*CachedStore)(nil)
