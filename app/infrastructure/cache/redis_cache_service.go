package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// RedisCacheService provides the shared cache tier on Redis. Every value is
// stored as an envelope carrying its creation time, and every Set registers
// the key in its prefix-pattern index sets so DeletePattern never scans the
// keyspace.
type RedisCacheService struct {
	client  *redis.Client
	redsync *redsync.Redsync
}

// NewRedisCacheService creates a Redis cache service from the environment.
func NewRedisCacheService() CacheService {
	redisURL := environment_variables.EnvironmentVariables.CACHE_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.GetLogger().Errorf("Failed to parse Redis URL: %v", err)
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	// Override with environment variables if provided
	if environment_variables.EnvironmentVariables.CACHE_PASSWORD != "" {
		opts.Password = environment_variables.EnvironmentVariables.CACHE_PASSWORD
	}
	if environment_variables.EnvironmentVariables.CACHE_DB != "" {
		if db, err := strconv.Atoi(environment_variables.EnvironmentVariables.CACHE_DB); err == nil {
			opts.DB = db
		}
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Errorf("Failed to connect to Redis: %v", err)
	} else {
		logger.GetLogger().Info("Successfully connected to Redis")
	}

	return NewRedisCacheServiceFromClient(client)
}

// NewRedisCacheServiceFromClient wraps an existing client. Used by tests and
// by callers that manage their own connection options.
func NewRedisCacheServiceFromClient(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{
		client:  client,
		redsync: redsync.New(goredis.NewPool(client)),
	}
}

// Set stores a value in Redis and registers the key in its pattern indexes.
// Failures are logged and absorbed.
func (r *RedisCacheService) Set(ctx context.Context, key string, value string, expiration time.Duration) {
	if expiration <= 0 {
		expiration = DefaultTTL
	}
	payload, err := encodeEnvelope(value, time.Now())
	if err != nil {
		logger.GetLogger().Errorf("Failed to encode cache envelope for %s: %v", key, err)
		return
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, key, payload, expiration)
	r.registerPatterns(ctx, pipe, key, expiration)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.GetLogger().Errorf("Failed to cache %s: %v", key, err)
	}
}

// SetMultiple stores several values with a shared expiration in one pipeline.
func (r *RedisCacheService) SetMultiple(ctx context.Context, entries map[string]string, expiration time.Duration) {
	if len(entries) == 0 {
		return
	}
	if expiration <= 0 {
		expiration = DefaultTTL
	}

	pipe := r.client.Pipeline()
	for key, value := range entries {
		payload, err := encodeEnvelope(value, time.Now())
		if err != nil {
			logger.GetLogger().Errorf("Failed to encode cache envelope for %s: %v", key, err)
			continue
		}
		pipe.Set(ctx, key, payload, expiration)
		r.registerPatterns(ctx, pipe, key, expiration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.GetLogger().Errorf("Failed to cache %d entries: %v", len(entries), err)
	}
}

// registerPatterns adds key to each of its prefix index sets. Index expiry
// only ever grows (NX then GT), so a short-lived entry can never shorten an
// index that still guards longer-lived members.
func (r *RedisCacheService) registerPatterns(ctx context.Context, pipe redis.Pipeliner, key string, expiration time.Duration) {
	indexTTL := expiration + PatternIndexGrace
	for _, pattern := range KeyPatterns(key) {
		indexKey := PatternIndexKeyPrefix + pattern
		pipe.SAdd(ctx, indexKey, key)
		pipe.ExpireNX(ctx, indexKey, indexTTL)
		pipe.ExpireGT(ctx, indexKey, indexTTL)
	}
}

// Get retrieves a value from Redis. Any failure degrades to a miss.
func (r *RedisCacheService) Get(ctx context.Context, key string) (string, bool) {
	entry, found := r.GetEntry(ctx, key)
	if !found {
		return "", false
	}
	return entry.Value, true
}

// GetEntry retrieves a value and its creation time. An entry whose envelope
// no longer decodes is unlinked and reported as a miss.
func (r *RedisCacheService) GetEntry(ctx context.Context, key string) (*Entry, bool) {
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().Errorf("Failed to get %s: %v", key, err)
		}
		return nil, false
	}

	entry, err := decodeEnvelope(raw)
	if err != nil {
		logger.GetLogger().Errorf("Dropping undecodable cache entry %s: %v", key, err)
		r.Unlink(ctx, key)
		return nil, false
	}

	r.recordAccess(ctx, key)
	return entry, true
}

// GetMultiple retrieves the present subset of keys via MGET. Missing and
// undecodable entries are simply absent from the result.
func (r *RedisCacheService) GetMultiple(ctx context.Context, keys []string) map[string]string {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.GetLogger().Errorf("Failed to mget %d keys: %v", len(keys), err)
		return result
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		entry, err := decodeEnvelope(raw)
		if err != nil {
			logger.GetLogger().Errorf("Dropping undecodable cache entry %s: %v", keys[i], err)
			r.Unlink(ctx, keys[i])
			continue
		}
		result[keys[i]] = entry.Value
		r.recordAccess(ctx, keys[i])
	}
	return result
}

// recordAccess bumps the rolling per-key counter and the hot-key set. The
// counters are best effort and never fail a read.
func (r *RedisCacheService) recordAccess(ctx context.Context, key string) {
	counterKey := AccessCounterKeyPrefix + key
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, AccessCounterWindow)
	pipe.ZIncrBy(ctx, HotKeysKey, 1, key)
	pipe.Expire(ctx, HotKeysKey, AccessCounterWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.GetLogger().Debugf("Failed to record access for %s: %v", key, err)
	}
}

// Delete removes a key from Redis, reporting whether it was present.
func (r *RedisCacheService) Delete(ctx context.Context, key string) bool {
	removed, err := r.client.Unlink(ctx, key).Result()
	if err != nil {
		logger.GetLogger().Errorf("Failed to delete %s: %v", key, err)
		return false
	}
	r.Unlink(ctx, AccessCounterKeyPrefix+key)
	return removed > 0
}

// Unlink removes a key from Redis asynchronously (non-blocking)
func (r *RedisCacheService) Unlink(ctx context.Context, key string) {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		logger.GetLogger().Errorf("Failed to unlink %s: %v", key, err)
	}
}

// DeletePattern removes all keys matching a pattern and returns how many
// were removed. Wildcard patterns resolve through the pattern index, so the
// cost tracks the number of matched keys, not the keyspace. Index sets may
// briefly hold already-expired members; the count comes from UNLINK replies,
// which ignore them.
func (r *RedisCacheService) DeletePattern(ctx context.Context, pattern string) (int, error) {
	_, wildcard, err := PatternPrefix(pattern)
	if err != nil {
		return 0, err
	}

	if !wildcard {
		if r.Delete(ctx, pattern) {
			return 1, nil
		}
		return 0, nil
	}

	indexKey := PatternIndexKeyPrefix + pattern
	members, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		logger.GetLogger().Errorf("Failed to read pattern index %s: %v", indexKey, err)
		return 0, nil
	}
	if len(members) == 0 {
		return 0, nil
	}

	pipe := r.client.Pipeline()
	unlinks := make([]*redis.IntCmd, 0, len(members))
	for _, member := range members {
		unlinks = append(unlinks, pipe.Unlink(ctx, member))
		pipe.Unlink(ctx, AccessCounterKeyPrefix+member)
	}
	pipe.Unlink(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.GetLogger().Errorf("Failed to unlink keys for pattern %s: %v", pattern, err)
		return 0, nil
	}

	removed := 0
	for _, cmd := range unlinks {
		removed += int(cmd.Val())
	}
	logger.GetLogger().Debugf("Invalidated %d keys for pattern %s", removed, pattern)
	return removed, nil
}

// Exists checks if a key exists in Redis
func (r *RedisCacheService) Exists(ctx context.Context, key string) bool {
	result, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		logger.GetLogger().Errorf("Failed to check key existence for %s: %v", key, err)
		return false
	}
	return result > 0
}

// AccessCount returns the rolling-window read count for a key.
func (r *RedisCacheService) AccessCount(ctx context.Context, key string) int64 {
	count, err := r.client.Get(ctx, AccessCounterKeyPrefix+key).Int64()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().Errorf("Failed to read access counter for %s: %v", key, err)
		}
		return 0
	}
	return count
}

// HotKeys returns the n most-read keys in the rolling window.
func (r *RedisCacheService) HotKeys(ctx context.Context, n int) []AccessCount {
	if n <= 0 {
		return nil
	}
	scores, err := r.client.ZRevRangeWithScores(ctx, HotKeysKey, 0, int64(n-1)).Result()
	if err != nil {
		logger.GetLogger().Errorf("Failed to read hot keys: %v", err)
		return nil
	}
	counts := make([]AccessCount, 0, len(scores))
	for _, score := range scores {
		member, ok := score.Member.(string)
		if !ok {
			continue
		}
		counts = append(counts, AccessCount{Key: member, Count: int64(score.Score)})
	}
	return counts
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}

// HealthCheck verifies Redis connectivity
func (r *RedisCacheService) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewMutex builds a redsync distributed lock on this Redis connection.
func (r *RedisCacheService) NewMutex(name string, options ...redsync.Option) *redsync.Mutex {
	return r.redsync.NewMutex(name, options...)
}
