package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-cms/lumina-cms/internal/authz"
)

func newCache(t *testing.T, inner authz.Store, ttl time.Duration) *authz.CachedStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return authz.NewCachedStore(inner, client, ttl, nil)
}

func TestCachedStoreServesFromCache(t *testing.T) {
	inner := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	cache := newCache(t, inner, time.Minute)
	ctx := context.Background()

	first, err := cache.Resolve(ctx, 1)
	require.NoError(t, err)
	second, err := cache.Resolve(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second read must hit the cache")
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.PermissionList(), second.PermissionList())
}

func TestCachedStoreInvalidate(t *testing.T) {
	inner := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	cache := newCache(t, inner, time.Minute)
	ctx := context.Background()

	_, err := cache.Resolve(ctx, 1)
	require.NoError(t, err)

	// Simulate a role-assignment write followed by invalidation.
	inner.principals[1].Roles = nil
	cache.Invalidate(ctx, 1)

	fresh, err := cache.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, fresh.Roles)
}

func TestCachedStoreDisabledTTL(t *testing.T) {
	inner := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	cache := newCache(t, inner, 0)
	ctx := context.Background()

	_, err := cache.Resolve(ctx, 1)
	require.NoError(t, err)
	_, err = cache.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "zero TTL must bypass the cache")
}

func TestCachedStorePropagatesNotFound(t *testing.T) {
	inner := &mockStore{principals: map[int64]*authz.Principal{}}
	cache := newCache(t, inner, time.Minute)

	_, err := cache.Resolve(context.Background(), 42)
	require.ErrorIs(t, err, authz.ErrPrincipalNotFound)
}
