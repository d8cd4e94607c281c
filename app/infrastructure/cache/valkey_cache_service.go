package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/valkey-io/valkey-go"
	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// ValkeyCacheService provides the shared cache tier on Valkey. Storage
// layout matches the Redis service: envelope values plus prefix-pattern
// index sets and rolling access counters.
type ValkeyCacheService struct {
	client valkey.Client
}

// parseValkeyURL parses a Valkey URL and returns address, password, database, and error
func parseValkeyURL(valkeyURL string) (address, password string, database int, err error) {
	// Default values
	database = -1 // -1 means no database specified

	// Handle plain address without protocol
	if !strings.Contains(valkeyURL, "://") {
		return valkeyURL, "", -1, nil
	}

	// Parse the URL
	u, err := url.Parse(valkeyURL)
	if err != nil {
		return "", "", -1, fmt.Errorf("invalid URL format: %w", err)
	}

	// Extract host and port
	address = u.Host
	if address == "" {
		return "", "", -1, fmt.Errorf("no host specified in URL")
	}

	// Extract password
	if u.User != nil {
		password, _ = u.User.Password()
	}

	// Extract database from path
	if u.Path != "" && u.Path != "/" {
		dbStr := strings.TrimPrefix(u.Path, "/")
		if dbStr != "" {
			if db, parseErr := strconv.Atoi(dbStr); parseErr == nil {
				database = db
			}
		}
	}

	return address, password, database, nil
}

// NewValkeyCacheService creates a new Valkey cache service
func NewValkeyCacheService() CacheService {
	valkeyURL := environment_variables.EnvironmentVariables.CACHE_URL
	if valkeyURL == "" {
		valkeyURL = "valkey://localhost:6379"
	}

	address, password, db, err := parseValkeyURL(valkeyURL)
	if err != nil {
		logger.GetLogger().Errorf("Failed to parse Valkey URL: %v", err)
		// Return a no-op implementation for graceful degradation
		return &NoOpCacheService{}
	}

	opts := valkey.ClientOption{
		InitAddress: []string{address},
	}
	if password != "" {
		opts.Password = password
	}
	if db != -1 {
		opts.SelectDB = db
	}

	// Override with environment variables if provided
	if environment_variables.EnvironmentVariables.CACHE_PASSWORD != "" {
		opts.Password = environment_variables.EnvironmentVariables.CACHE_PASSWORD
	}
	if environment_variables.EnvironmentVariables.CACHE_DB != "" {
		if db, err := strconv.Atoi(environment_variables.EnvironmentVariables.CACHE_DB); err == nil {
			opts.SelectDB = db
		}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		logger.GetLogger().Errorf("Failed to create Valkey client: %v", err)
		return &NoOpCacheService{}
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.GetLogger().Errorf("Failed to connect to Valkey: %v", err)
		return &NoOpCacheService{}
	}

	return &ValkeyCacheService{
		client: client,
	}
}

// Set stores a value in Valkey and registers the key in its pattern indexes.
func (v *ValkeyCacheService) Set(ctx context.Context, key string, value string, expiration time.Duration) {
	if expiration <= 0 {
		expiration = DefaultTTL
	}
	payload, err := encodeEnvelope(value, time.Now())
	if err != nil {
		logger.GetLogger().Errorf("Failed to encode cache envelope for %s: %v", key, err)
		return
	}

	cmds := []valkey.Completed{
		v.client.B().Set().Key(key).Value(payload).ExSeconds(ttlSeconds(expiration)).Build(),
	}
	cmds = append(cmds, v.patternCommands(key, expiration)...)
	for _, result := range v.client.DoMulti(ctx, cmds...) {
		if err := result.Error(); err != nil {
			logger.GetLogger().Errorf("Failed to cache %s: %v", key, err)
			return
		}
	}
}

// SetMultiple stores several values with a shared expiration in one batch.
func (v *ValkeyCacheService) SetMultiple(ctx context.Context, entries map[string]string, expiration time.Duration) {
	if len(entries) == 0 {
		return
	}
	if expiration <= 0 {
		expiration = DefaultTTL
	}

	cmds := make([]valkey.Completed, 0, len(entries)*4)
	for key, value := range entries {
		payload, err := encodeEnvelope(value, time.Now())
		if err != nil {
			logger.GetLogger().Errorf("Failed to encode cache envelope for %s: %v", key, err)
			continue
		}
		cmds = append(cmds, v.client.B().Set().Key(key).Value(payload).ExSeconds(ttlSeconds(expiration)).Build())
		cmds = append(cmds, v.patternCommands(key, expiration)...)
	}
	for _, result := range v.client.DoMulti(ctx, cmds...) {
		if err := result.Error(); err != nil {
			logger.GetLogger().Errorf("Failed to cache %d entries: %v", len(entries), err)
			return
		}
	}
}

// patternCommands builds the index registrations for a key. Index expiry
// only ever grows (NX then GT), matching the Redis service.
func (v *ValkeyCacheService) patternCommands(key string, expiration time.Duration) []valkey.Completed {
	indexTTL := ttlSeconds(expiration + PatternIndexGrace)
	cmds := make([]valkey.Completed, 0, 3*3)
	for _, pattern := range KeyPatterns(key) {
		indexKey := PatternIndexKeyPrefix + pattern
		cmds = append(cmds,
			v.client.B().Sadd().Key(indexKey).Member(key).Build(),
			v.client.B().Expire().Key(indexKey).Seconds(indexTTL).Nx().Build(),
			v.client.B().Expire().Key(indexKey).Seconds(indexTTL).Gt().Build(),
		)
	}
	return cmds
}

// Get retrieves a value from Valkey. Any failure degrades to a miss.
func (v *ValkeyCacheService) Get(ctx context.Context, key string) (string, bool) {
	entry, found := v.GetEntry(ctx, key)
	if !found {
		return "", false
	}
	return entry.Value, true
}

// GetEntry retrieves a value and its creation time. An entry whose envelope
// no longer decodes is unlinked and reported as a miss.
func (v *ValkeyCacheService) GetEntry(ctx context.Context, key string) (*Entry, bool) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			logger.GetLogger().Errorf("Failed to get %s: %v", key, err)
		}
		return nil, false
	}

	entry, err := decodeEnvelope(raw)
	if err != nil {
		logger.GetLogger().Errorf("Dropping undecodable cache entry %s: %v", key, err)
		v.Unlink(ctx, key)
		return nil, false
	}

	v.recordAccess(ctx, key)
	return entry, true
}

// GetMultiple retrieves the present subset of keys.
func (v *ValkeyCacheService) GetMultiple(ctx context.Context, keys []string) map[string]string {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, found := v.Get(ctx, key); found {
			result[key] = value
		}
	}
	return result
}

// recordAccess bumps the rolling per-key counter and the hot-key set.
func (v *ValkeyCacheService) recordAccess(ctx context.Context, key string) {
	counterKey := AccessCounterKeyPrefix + key
	window := ttlSeconds(AccessCounterWindow)
	results := v.client.DoMulti(ctx,
		v.client.B().Incr().Key(counterKey).Build(),
		v.client.B().Expire().Key(counterKey).Seconds(window).Build(),
		v.client.B().Zincrby().Key(HotKeysKey).Increment(1).Member(key).Build(),
		v.client.B().Expire().Key(HotKeysKey).Seconds(window).Build(),
	)
	for _, result := range results {
		if err := result.Error(); err != nil {
			logger.GetLogger().Debugf("Failed to record access for %s: %v", key, err)
			return
		}
	}
}

// Delete removes a key from Valkey synchronously, reporting whether it was
// present.
func (v *ValkeyCacheService) Delete(ctx context.Context, key string) bool {
	removed, err := v.client.Do(ctx, v.client.B().Del().Key(key).Build()).AsInt64()
	if err != nil {
		logger.GetLogger().Errorf("Failed to delete %s: %v", key, err)
		return false
	}
	v.Unlink(ctx, AccessCounterKeyPrefix+key)
	return removed > 0
}

// Unlink removes a key from Valkey asynchronously (non-blocking)
func (v *ValkeyCacheService) Unlink(ctx context.Context, key string) {
	if err := v.client.Do(ctx, v.client.B().Unlink().Key(key).Build()).Error(); err != nil {
		logger.GetLogger().Errorf("Failed to unlink %s: %v", key, err)
	}
}

// DeletePattern removes all keys matching a pattern and returns how many
// were removed, resolving wildcards through the pattern index.
func (v *ValkeyCacheService) DeletePattern(ctx context.Context, pattern string) (int, error) {
	_, wildcard, err := PatternPrefix(pattern)
	if err != nil {
		return 0, err
	}

	if !wildcard {
		if v.Delete(ctx, pattern) {
			return 1, nil
		}
		return 0, nil
	}

	indexKey := PatternIndexKeyPrefix + pattern
	members, err := v.client.Do(ctx, v.client.B().Smembers().Key(indexKey).Build()).AsStrSlice()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			logger.GetLogger().Errorf("Failed to read pattern index %s: %v", indexKey, err)
		}
		return 0, nil
	}
	if len(members) == 0 {
		return 0, nil
	}

	removed, err := v.client.Do(ctx, v.client.B().Unlink().Key(members...).Build()).AsInt64()
	if err != nil {
		logger.GetLogger().Errorf("Failed to unlink keys for pattern %s: %v", pattern, err)
		return 0, nil
	}
	counterKeys := make([]string, 0, len(members)+1)
	for _, member := range members {
		counterKeys = append(counterKeys, AccessCounterKeyPrefix+member)
	}
	counterKeys = append(counterKeys, indexKey)
	if err := v.client.Do(ctx, v.client.B().Unlink().Key(counterKeys...).Build()).Error(); err != nil {
		logger.GetLogger().Errorf("Failed to unlink pattern index %s: %v", indexKey, err)
	}
	return int(removed), nil
}

// Exists checks if a key exists in Valkey
func (v *ValkeyCacheService) Exists(ctx context.Context, key string) bool {
	count, err := v.client.Do(ctx, v.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		logger.GetLogger().Errorf("Failed to check key existence for %s: %v", key, err)
		return false
	}
	return count > 0
}

// AccessCount returns the rolling-window read count for a key.
func (v *ValkeyCacheService) AccessCount(ctx context.Context, key string) int64 {
	count, err := v.client.Do(ctx, v.client.B().Get().Key(AccessCounterKeyPrefix+key).Build()).AsInt64()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			logger.GetLogger().Errorf("Failed to read access counter for %s: %v", key, err)
		}
		return 0
	}
	return count
}

// HotKeys returns the n most-read keys in the rolling window.
func (v *ValkeyCacheService) HotKeys(ctx context.Context, n int) []AccessCount {
	if n <= 0 {
		return nil
	}
	scores, err := v.client.Do(ctx, v.client.B().Zrevrange().Key(HotKeysKey).Start(0).Stop(int64(n-1)).Withscores().Build()).AsZScores()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			logger.GetLogger().Errorf("Failed to read hot keys: %v", err)
		}
		return nil
	}
	counts := make([]AccessCount, 0, len(scores))
	for _, score := range scores {
		counts = append(counts, AccessCount{Key: score.Member, Count: int64(score.Score)})
	}
	return counts
}

// Close closes the Valkey connection
func (v *ValkeyCacheService) Close() error {
	v.client.Close()
	return nil
}

// HealthCheck verifies Valkey connectivity
func (v *ValkeyCacheService) HealthCheck(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}

// NewMutex returns nil; distributed locking is only wired for the Redis
// backend.
func (v *ValkeyCacheService) NewMutex(name string, options ...redsync.Option) *redsync.Mutex {
	return nil
}

func ttlSeconds(d time.Duration) int64 {
	sec := int64(d / time.Second)
	if sec < 1 {
		sec = 1
	}
	return sec
}
