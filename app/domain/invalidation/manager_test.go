package invalidation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
)

func setupManager(t *testing.T, edges map[string][]string) (*Manager, *cache.TieredCache) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	shared := cache.NewRedisCacheServiceFromClient(client)
	local := cache.NewMemoryCache(100, time.Hour, time.Minute)

	tc, err := cache.NewTieredCache(local, shared, cache.TieredCacheConfig{
		FreshTTL: 2 * time.Minute,
		StaleTTL: 10 * time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = tc.Close()
		mr.Close()
	})

	manager, err := NewManager(tc, edges)
	require.NoError(t, err)
	return manager, tc
}

func seedChain(t *testing.T, tc *cache.TieredCache) {
	ctx := context.Background()
	for _, key := range []string{
		"v1:listings:record:abc",
		"v1:listings:detail:abc",
		"v1:listings:search:fp1",
		"v1:listings:search:fp2",
		"v1:precomputed:search:top",
		"v1:listings:images:abc",
	} {
		require.NoError(t, tc.Set(ctx, key, "payload", time.Hour))
	}
}

func TestManager_RecordUpdateCascadesThroughGraph(t *testing.T) {
	manager, tc := setupManager(t, DefaultEdges())
	seedChain(t, tc)
	ctx := context.Background()

	removed, err := manager.InvalidateWithDependencies(ctx, "v1:listings:record:abc")
	require.NoError(t, err)
	// record + detail + 2 search pages + precomputed, each counted in both tiers
	assert.Equal(t, 10, removed)

	for _, key := range []string{
		"v1:listings:record:abc",
		"v1:listings:detail:abc",
		"v1:listings:search:fp1",
		"v1:listings:search:fp2",
		"v1:precomputed:search:top",
	} {
		assert.False(t, tc.Has(ctx, key), "expected %s to be invalidated", key)
	}
	assert.True(t, tc.Has(ctx, "v1:listings:images:abc"), "unrelated entry must survive the cascade")
}

func TestManager_PatternTriggerCoversNarrowerEdges(t *testing.T) {
	manager, tc := setupManager(t, DefaultEdges())
	seedChain(t, tc)
	ctx := context.Background()

	removed, err := manager.InvalidateWithDependencies(ctx, "v1:listings:*")
	require.NoError(t, err)
	// five v1:listings keys swept by the trigger, plus one precomputed
	// entry reached through the search edge, in both tiers
	assert.Equal(t, 12, removed)
	assert.False(t, tc.Has(ctx, "v1:listings:images:abc"))
	assert.False(t, tc.Has(ctx, "v1:precomputed:search:top"))
}

func TestManager_TriggerWithoutEdgesInvalidatesOnlyItself(t *testing.T) {
	manager, tc := setupManager(t, DefaultEdges())
	seedChain(t, tc)
	ctx := context.Background()

	removed, err := manager.InvalidateWithDependencies(ctx, "v1:listings:images:abc")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, tc.Has(ctx, "v1:listings:detail:abc"))
	assert.True(t, tc.Has(ctx, "v1:listings:search:fp1"))
}

func TestManager_CyclicGraphTerminates(t *testing.T) {
	manager, tc := setupManager(t, map[string][]string{
		"v1:a:*": {"v1:b:*"},
		"v1:b:*": {"v1:a:*"},
	})
	ctx := context.Background()
	require.NoError(t, tc.Set(ctx, "v1:a:x", "payload", time.Hour))
	require.NoError(t, tc.Set(ctx, "v1:b:y", "payload", time.Hour))

	removed, err := manager.InvalidateWithDependencies(ctx, "v1:a:*")
	require.NoError(t, err)
	assert.Equal(t, 4, removed)
	assert.False(t, tc.Has(ctx, "v1:a:x"))
	assert.False(t, tc.Has(ctx, "v1:b:y"))
}

func TestManager_RejectsMalformedTrigger(t *testing.T) {
	manager, _ := setupManager(t, DefaultEdges())

	_, err := manager.InvalidateWithDependencies(context.Background(), "v1:*:bad")
	assert.ErrorIs(t, err, cache.ErrBadPattern)
}

func TestManager_RejectsMalformedEdges(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	shared := cache.NewRedisCacheServiceFromClient(client)
	local := cache.NewMemoryCache(10, time.Minute, time.Minute)
	tc, err := cache.NewTieredCache(local, shared, cache.TieredCacheConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tc.Close() })

	_, err = NewManager(tc, map[string][]string{"v1:*:bad": {"v1:b:*"}})
	assert.Error(t, err)

	_, err = NewManager(tc, map[string][]string{"v1:a:*": {"v1:*:bad"}})
	assert.Error(t, err)
}
