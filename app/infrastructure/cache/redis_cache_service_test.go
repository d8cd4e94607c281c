package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCacheService(t *testing.T) (*RedisCacheService, *redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	service := NewRedisCacheServiceFromClient(client)

	t.Cleanup(func() {
		_ = service.Close()
		mr.Close()
	})

	return service, client, mr
}

func TestRedisCacheService_SetStoresEnvelope(t *testing.T) {
	service, _, mr := setupRedisCacheService(t)
	ctx := context.Background()

	before := time.Now()
	service.Set(ctx, "v1:listings:detail:a", `{"id":"a"}`, time.Minute)

	raw, err := mr.Get("v1:listings:detail:a")
	require.NoError(t, err)

	var env struct {
		V string `json:"v"`
		C int64  `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, `{"id":"a"}`, env.V)
	assert.GreaterOrEqual(t, env.C, before.UnixMilli())

	assert.Equal(t, time.Minute, mr.TTL("v1:listings:detail:a"))
}

func TestRedisCacheService_GetEntryReturnsCreationTime(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "k1", "value", time.Minute)

	entry, found := service.GetEntry(ctx, "k1")
	require.True(t, found)
	assert.Equal(t, "value", entry.Value)
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Second)
}

func TestRedisCacheService_GetMiss(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)

	_, found := service.Get(context.Background(), "absent")
	assert.False(t, found)
}

func TestRedisCacheService_SetRegistersPatternIndexes(t *testing.T) {
	service, client, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "v1:listings:detail:a", "x", time.Minute)

	for _, indexKey := range []string{"idx:v1:*", "idx:v1:listings:*", "idx:v1:listings:detail:*"} {
		members, err := client.SMembers(ctx, indexKey).Result()
		require.NoError(t, err)
		assert.Contains(t, members, "v1:listings:detail:a", indexKey)

		ttl, err := client.TTL(ctx, indexKey).Result()
		require.NoError(t, err)
		assert.Equal(t, time.Minute+PatternIndexGrace, ttl, indexKey)
	}
}

func TestRedisCacheService_IndexExpiryNeverShrinks(t *testing.T) {
	service, client, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "v1:listings:detail:long", "x", time.Hour)
	service.Set(ctx, "v1:listings:detail:short", "y", time.Minute)

	ttl, err := client.TTL(ctx, "idx:v1:listings:detail:*").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Hour+PatternIndexGrace, ttl)
}

func TestRedisCacheService_DeletePattern(t *testing.T) {
	service, client, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "v1:listings:detail:a", "1", time.Minute)
	service.Set(ctx, "v1:listings:detail:b", "2", time.Minute)
	service.Set(ctx, "v1:listings:detailed:c", "3", time.Minute)
	service.Set(ctx, "v1:listings:search:x", "4", time.Minute)

	removed, err := service.DeletePattern(ctx, "v1:listings:detail:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.False(t, service.Exists(ctx, "v1:listings:detail:a"))
	assert.False(t, service.Exists(ctx, "v1:listings:detail:b"))
	assert.True(t, service.Exists(ctx, "v1:listings:detailed:c"))
	assert.True(t, service.Exists(ctx, "v1:listings:search:x"))

	// The consumed index set is gone with its members.
	exists, err := client.Exists(ctx, "idx:v1:listings:detail:*").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	// A second pass finds nothing.
	removed, err = service.DeletePattern(ctx, "v1:listings:detail:*")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRedisCacheService_DeletePatternExactKey(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "v1:listings:detail:a", "1", time.Minute)

	removed, err := service.DeletePattern(ctx, "v1:listings:detail:a")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, service.Exists(ctx, "v1:listings:detail:a"))
}

func TestRedisCacheService_DeletePatternRejectsUnsupportedGlobs(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)

	_, err := service.DeletePattern(context.Background(), "v1:*:detail")
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestRedisCacheService_DeletePatternSkipsExpiredMembers(t *testing.T) {
	service, _, mr := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "v1:listings:detail:a", "1", time.Minute)
	service.Set(ctx, "v1:listings:detail:b", "2", time.Hour)

	// Age out the first entry; its index membership lingers until the grace
	// window passes, but the count only reflects keys actually removed.
	mr.FastForward(2 * time.Minute)

	removed, err := service.DeletePattern(ctx, "v1:listings:detail:*")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestRedisCacheService_UndecodableEntryDropped(t *testing.T) {
	service, client, mr := setupRedisCacheService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("corrupt", "not-an-envelope"))

	_, found := service.GetEntry(ctx, "corrupt")
	assert.False(t, found)

	exists, err := client.Exists(ctx, "corrupt").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisCacheService_DegradesToMissWhenDown(t *testing.T) {
	service, _, mr := setupRedisCacheService(t)
	ctx := context.Background()

	mr.Close()

	_, found := service.Get(ctx, "k1")
	assert.False(t, found)

	service.Set(ctx, "k1", "v", time.Minute)

	removed, err := service.DeletePattern(ctx, "v1:listings:detail:*")
	require.NoError(t, err)
	assert.Zero(t, removed)

	assert.False(t, service.Exists(ctx, "k1"))
	assert.Error(t, service.HealthCheck(ctx))
}

func TestRedisCacheService_Delete(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "k1", "v", time.Minute)

	assert.True(t, service.Delete(ctx, "k1"))
	assert.False(t, service.Delete(ctx, "k1"))
}

func TestRedisCacheService_AccessCounters(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.Set(ctx, "popular", "v", time.Minute)
	service.Set(ctx, "quiet", "v", time.Minute)

	for i := 0; i < 3; i++ {
		service.Get(ctx, "popular")
	}
	service.Get(ctx, "quiet")

	assert.Equal(t, int64(3), service.AccessCount(ctx, "popular"))
	assert.Equal(t, int64(1), service.AccessCount(ctx, "quiet"))
	assert.Zero(t, service.AccessCount(ctx, "untouched"))

	hotKeys := service.HotKeys(ctx, 1)
	require.Len(t, hotKeys, 1)
	assert.Equal(t, "popular", hotKeys[0].Key)
	assert.Equal(t, int64(3), hotKeys[0].Count)
}

func TestRedisCacheService_SetMultipleGetMultiple(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)
	ctx := context.Background()

	service.SetMultiple(ctx, map[string]string{
		"v1:listings:detail:a": "1",
		"v1:listings:detail:b": "2",
	}, time.Minute)

	values := service.GetMultiple(ctx, []string{"v1:listings:detail:a", "v1:listings:detail:b", "v1:listings:detail:absent"})
	assert.Equal(t, map[string]string{
		"v1:listings:detail:a": "1",
		"v1:listings:detail:b": "2",
	}, values)

	// Batched writes register pattern indexes like single writes do.
	removed, err := service.DeletePattern(ctx, "v1:listings:detail:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestRedisCacheService_NewMutex(t *testing.T) {
	service, _, _ := setupRedisCacheService(t)

	mutex := service.NewMutex("v1:warming:lock")
	require.NotNil(t, mutex)
	require.NoError(t, mutex.Lock())

	ok, err := mutex.Unlock()
	require.NoError(t, err)
	assert.True(t, ok)
}
