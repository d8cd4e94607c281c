package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	"golang.org/x/sync/singleflight"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

var (
	// ErrConfiguration reports an invalid facade or SWR configuration.
	ErrConfiguration = errors.New("cache: invalid configuration")
	// ErrClosed is returned for operations on a closed facade.
	ErrClosed = errors.New("cache: facade is closed")
)

// FetchFunc loads a value from the system of record for one key.
type FetchFunc func(ctx context.Context) (any, error)

// SWROptions are the per-call freshness windows for GetWithSWR. Zero values
// fall back to the facade defaults.
type SWROptions struct {
	FreshTTL time.Duration
	StaleTTL time.Duration
}

// AccessOption tunes a single facade read or write.
type AccessOption func(*accessConfig)

type accessConfig struct {
	skipLocal  bool
	skipShared bool
}

// SkipLocal bypasses the process-local tier for this call.
func SkipLocal() AccessOption {
	return func(c *accessConfig) { c.skipLocal = true }
}

// SkipShared bypasses the shared tier for this call.
func SkipShared() AccessOption {
	return func(c *accessConfig) { c.skipShared = true }
}

func applyAccessOptions(options []AccessOption) accessConfig {
	var cfg accessConfig
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

// TieredCacheConfig configures the facade. Zero fields take the package
// defaults.
type TieredCacheConfig struct {
	FreshTTL       time.Duration
	StaleTTL       time.Duration
	RefreshWorkers int
	RefreshTimeout time.Duration
}

// TieredCache composes the local and shared tiers behind one API and adds
// stale-while-revalidate reads on top. Every consumer of cached data goes
// through this type.
type TieredCache struct {
	local  *MemoryCache
	shared CacheService

	freshTTL       time.Duration
	staleTTL       time.Duration
	refreshTimeout time.Duration

	group      singleflight.Group
	inflight   *inflightRegistry
	refreshSem chan struct{}

	sharedHits          atomic.Int64
	sharedMisses        atomic.Int64
	staleServes         atomic.Int64
	backgroundRefreshes atomic.Int64
	refreshFailures     atomic.Int64

	closed atomic.Bool
}

// NewTieredCache builds the facade over an existing local tier and shared
// service. A fresh window longer than the stale window is a configuration
// error.
func NewTieredCache(local *MemoryCache, shared CacheService, config TieredCacheConfig) (*TieredCache, error) {
	if config.FreshTTL <= 0 {
		config.FreshTTL = DefaultFreshTTL
	}
	if config.StaleTTL <= 0 {
		config.StaleTTL = DefaultStaleTTL
	}
	if config.RefreshWorkers <= 0 {
		config.RefreshWorkers = DefaultRefreshWorkers
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = DefaultRefreshTimeout
	}
	if config.FreshTTL > config.StaleTTL {
		return nil, fmt.Errorf("%w: fresh TTL %s exceeds stale TTL %s", ErrConfiguration, config.FreshTTL, config.StaleTTL)
	}

	return &TieredCache{
		local:          local,
		shared:         shared,
		freshTTL:       config.FreshTTL,
		staleTTL:       config.StaleTTL,
		refreshTimeout: config.RefreshTimeout,
		inflight:       newInflightRegistry(),
		refreshSem:     make(chan struct{}, config.RefreshWorkers),
	}, nil
}

// Get reads key through both tiers and decodes it into dest. A shared-tier
// hit is promoted into the local tier.
func (t *TieredCache) Get(ctx context.Context, key string, dest any, options ...AccessOption) bool {
	if t.closed.Load() {
		return false
	}
	entry, found := t.lookupEntry(ctx, key, applyAccessOptions(options))
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(entry.Value), dest); err != nil {
		logger.GetLogger().Errorf("Failed to decode cached value for %s: %v", key, err)
		t.Delete(ctx, key)
		return false
	}
	return true
}

// Set marshals value once and writes it to both tiers. The local copy is
// TTL-capped by the tier itself.
func (t *TieredCache) Set(ctx context.Context, key string, value any, ttl time.Duration, options ...AccessOption) error {
	if t.closed.Load() {
		return ErrClosed
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	t.setRaw(ctx, key, string(raw), ttl, applyAccessOptions(options))
	return nil
}

func (t *TieredCache) setRaw(ctx context.Context, key, raw string, ttl time.Duration, cfg accessConfig) {
	if !cfg.skipLocal {
		t.local.Set(key, []byte(raw), ttl)
	}
	if !cfg.skipShared {
		t.shared.Set(ctx, key, raw, ttl)
	}
}

// Delete removes key from both tiers, reporting whether either held it.
func (t *TieredCache) Delete(ctx context.Context, key string) bool {
	localRemoved := t.local.Delete(key)
	sharedRemoved := t.shared.Delete(ctx, key)
	return localRemoved || sharedRemoved
}

// Has checks both tiers without decoding or promoting.
func (t *TieredCache) Has(ctx context.Context, key string) bool {
	if t.closed.Load() {
		return false
	}
	return t.local.Has(key) || t.shared.Exists(ctx, key)
}

// GetMultiple returns the raw cached payloads present for keys: local tier
// first, then one shared-tier round trip for the remainder. Shared hits are
// promoted locally.
func (t *TieredCache) GetMultiple(ctx context.Context, keys []string) map[string]string {
	result := make(map[string]string, len(keys))
	if t.closed.Load() {
		return result
	}

	missing := make([]string, 0, len(keys))
	for _, key := range keys {
		if value, _, found := t.local.Get(key); found {
			result[key] = string(value)
		} else {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return result
	}

	sharedValues := t.shared.GetMultiple(ctx, missing)
	t.sharedHits.Add(int64(len(sharedValues)))
	t.sharedMisses.Add(int64(len(missing) - len(sharedValues)))
	for key, value := range sharedValues {
		t.local.Set(key, []byte(value), t.staleTTL)
		result[key] = value
	}
	return result
}

// SetMultiple marshals and writes a batch with a shared TTL.
func (t *TieredCache) SetMultiple(ctx context.Context, entries map[string]any, ttl time.Duration) error {
	if t.closed.Load() {
		return ErrClosed
	}
	encoded := make(map[string]string, len(entries))
	for key, value := range entries {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for %s: %w", key, err)
		}
		encoded[key] = string(raw)
	}
	for key, raw := range encoded {
		t.local.Set(key, []byte(raw), ttl)
	}
	t.shared.SetMultiple(ctx, encoded, ttl)
	return nil
}

// InvalidatePattern removes every entry matching pattern from both tiers and
// returns the summed count. The same logical key can count once per tier.
func (t *TieredCache) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	localRemoved, err := t.local.InvalidatePattern(pattern)
	if err != nil {
		return 0, err
	}
	sharedRemoved, err := t.shared.DeletePattern(ctx, pattern)
	if err != nil {
		return localRemoved, err
	}
	return localRemoved + sharedRemoved, nil
}

// GetWithSWR reads key with stale-while-revalidate semantics:
//
//   - no prior value: fetch synchronously, store, return (concurrent callers
//     for the same key share one fetch);
//   - fresher than the fresh window: return as is;
//   - past the fresh window but inside the stale window: return the cached
//     value immediately and revalidate once in the background;
//   - past the stale window: fetch synchronously, falling back to the stale
//     value if the fetch fails.
//
// The error returned is always a fetch error, and only when no cached value
// could be served instead.
func (t *TieredCache) GetWithSWR(ctx context.Context, key string, dest any, fetch FetchFunc, options SWROptions) error {
	if t.closed.Load() {
		return ErrClosed
	}
	freshTTL, staleTTL := t.freshTTL, t.staleTTL
	if options.FreshTTL > 0 {
		freshTTL = options.FreshTTL
	}
	if options.StaleTTL > 0 {
		staleTTL = options.StaleTTL
	}
	if freshTTL > staleTTL {
		return fmt.Errorf("%w: fresh TTL %s exceeds stale TTL %s", ErrConfiguration, freshTTL, staleTTL)
	}

	entry, found := t.lookupEntry(ctx, key, accessConfig{})
	if !found {
		raw, err := t.fetchAndStore(ctx, key, fetch, staleTTL)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(raw), dest)
	}

	age := entry.Age(time.Now())
	switch {
	case age < freshTTL:
		return json.Unmarshal([]byte(entry.Value), dest)

	case age < staleTTL:
		t.staleServes.Add(1)
		t.revalidate(key, fetch, staleTTL)
		return json.Unmarshal([]byte(entry.Value), dest)

	default:
		raw, err := t.fetchAndStore(ctx, key, fetch, staleTTL)
		if err != nil {
			logger.GetLogger().Warnf("Serving stale value for %s, refresh failed: %v", key, err)
			t.staleServes.Add(1)
			return json.Unmarshal([]byte(entry.Value), dest)
		}
		return json.Unmarshal([]byte(raw), dest)
	}
}

// fetchAndStore loads from the system of record and writes both tiers.
// Concurrent synchronous callers for the same key collapse into one fetch.
func (t *TieredCache) fetchAndStore(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) (string, error) {
	raw, err, _ := t.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal fetched value for %s: %w", key, err)
		}
		t.setRaw(ctx, key, string(encoded), ttl, accessConfig{})
		return string(encoded), nil
	})
	if err != nil {
		return "", err
	}
	return raw.(string), nil
}

// revalidate claims the in-flight marker for key and, when it wins the
// claim, schedules one background refresh through the worker pool. Callers
// never wait on the result.
func (t *TieredCache) revalidate(key string, fetch FetchFunc, ttl time.Duration) {
	handle, claimed := t.inflight.claim(key)
	if !claimed {
		return
	}

	go func() {
		defer t.inflight.release(key, handle)
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().Errorf("Recovered from panic refreshing %s: %v", key, r)
			}
		}()

		t.refreshSem <- struct{}{}
		defer func() { <-t.refreshSem }()

		ctx, cancel := context.WithTimeout(context.Background(), t.refreshTimeout)
		defer cancel()

		value, err := fetch(ctx)
		if err != nil {
			t.refreshFailures.Add(1)
			logger.GetLogger().Warnf("Background refresh for %s failed: %v", key, err)
			return
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			t.refreshFailures.Add(1)
			logger.GetLogger().Errorf("Failed to marshal refreshed value for %s: %v", key, err)
			return
		}
		t.setRaw(ctx, key, string(encoded), ttl, accessConfig{})
		t.backgroundRefreshes.Add(1)
	}()
}

// AwaitRefresh returns a channel that closes when the in-flight refresh for
// key completes. With no refresh in flight the channel is already closed.
func (t *TieredCache) AwaitRefresh(key string) <-chan struct{} {
	return t.inflight.watch(key)
}

// lookupEntry reads key from the tiers in order. Shared hits are promoted
// into the local tier with the entry's remaining usefulness capped locally.
func (t *TieredCache) lookupEntry(ctx context.Context, key string, cfg accessConfig) (*Entry, bool) {
	if !cfg.skipLocal {
		if value, createdAt, found := t.local.Get(key); found {
			return &Entry{Value: string(value), CreatedAt: createdAt}, true
		}
	}
	if cfg.skipShared {
		return nil, false
	}
	entry, found := t.shared.GetEntry(ctx, key)
	if !found {
		t.sharedMisses.Add(1)
		return nil, false
	}
	t.sharedHits.Add(1)
	if !cfg.skipLocal {
		t.promoteLocal(key, entry)
	}
	return entry, true
}

// promoteLocal installs a shared-tier entry into the local tier, preserving
// its original creation time so SWR ages stay consistent across tiers.
func (t *TieredCache) promoteLocal(key string, entry *Entry) {
	t.local.SetWithCreatedAt(key, []byte(entry.Value), t.staleTTL, entry.CreatedAt)
}

// Stats reports both tiers plus the facade's own counters.
func (t *TieredCache) Stats() TieredStats {
	return TieredStats{
		Local:               t.local.Stats(),
		SharedHits:          t.sharedHits.Load(),
		SharedMisses:        t.sharedMisses.Load(),
		StaleServes:         t.staleServes.Load(),
		BackgroundRefreshes: t.backgroundRefreshes.Load(),
		RefreshFailures:     t.refreshFailures.Load(),
		InflightRefreshes:   t.inflight.count(),
	}
}

// HotKeys reports the most-read keys per tier.
func (t *TieredCache) HotKeys(ctx context.Context, n int) HotKeysReport {
	return HotKeysReport{
		Local:  t.local.HotKeys(n),
		Shared: t.shared.HotKeys(ctx, n),
	}
}

// HealthCheck pings the shared tier. The local tier needs no connectivity,
// so an error here means degraded, not down.
func (t *TieredCache) HealthCheck(ctx context.Context) error {
	if t.closed.Load() {
		return ErrClosed
	}
	return t.shared.HealthCheck(ctx)
}

// NewMutex exposes the shared tier's distributed locking, nil when the
// backend has none.
func (t *TieredCache) NewMutex(name string, options ...redsync.Option) *redsync.Mutex {
	return t.shared.NewMutex(name, options...)
}

// Close stops the local sweeper and closes the shared connection. Reads
// against a closed facade miss; writes and SWR reads return ErrClosed.
func (t *TieredCache) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.local.Close()
	return t.shared.Close()
}

type TieredStats struct {
	Local               MemoryCacheStats `json:"local"`
	SharedHits          int64            `json:"shared_hits"`
	SharedMisses        int64            `json:"shared_misses"`
	StaleServes         int64            `json:"stale_serves"`
	BackgroundRefreshes int64            `json:"background_refreshes"`
	RefreshFailures     int64            `json:"refresh_failures"`
	InflightRefreshes   int              `json:"inflight_refreshes"`
}

type HotKeysReport struct {
	Local  []HotKey      `json:"local"`
	Shared []AccessCount `json:"shared"`
}

// inflightRegistry tracks at most one background revalidation per key in
// this process. claim is the single atomic check-and-set.
type inflightRegistry struct {
	mu      sync.Mutex
	pending map[string]chan struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{pending: make(map[string]chan struct{})}
}

func (r *inflightRegistry) claim(key string) (chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pending[key]; exists {
		return nil, false
	}
	handle := make(chan struct{})
	r.pending[key] = handle
	return handle, true
}

func (r *inflightRegistry) release(key string, handle chan struct{}) {
	r.mu.Lock()
	delete(r.pending, key)
	r.mu.Unlock()
	close(handle)
}

func (r *inflightRegistry) watch(key string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle, exists := r.pending[key]; exists {
		return handle
	}
	done := make(chan struct{})
	close(done)
	return done
}

func (r *inflightRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
