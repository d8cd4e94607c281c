package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
)

// CacheService defines the shared-tier cache operations.
//
// Implementations absorb backend availability problems instead of surfacing
// them: reads degrade to misses, writes to no-ops, and transport errors show
// up only in logs and HealthCheck. DeletePattern returns an error solely for
// patterns the cache does not support.
type CacheService interface {
	// Set stores a value under key with an expiration time
	Set(ctx context.Context, key string, value string, expiration time.Duration)

	// SetMultiple stores several values with a shared expiration time
	SetMultiple(ctx context.Context, entries map[string]string, expiration time.Duration)

	// Get retrieves a value, reporting whether it was found
	Get(ctx context.Context, key string) (string, bool)

	// GetEntry retrieves a value together with its creation time
	GetEntry(ctx context.Context, key string) (*Entry, bool)

	// GetMultiple retrieves the subset of keys that are present
	GetMultiple(ctx context.Context, keys []string) map[string]string

	// Delete removes a key synchronously, reporting whether it was present
	Delete(ctx context.Context, key string) bool

	// Unlink removes a key asynchronously (non-blocking)
	Unlink(ctx context.Context, key string)

	// DeletePattern removes all keys matching a pattern and returns the count
	DeletePattern(ctx context.Context, pattern string) (int, error)

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) bool

	// AccessCount returns the rolling-window read count for a key
	AccessCount(ctx context.Context, key string) int64

	// HotKeys returns the n most-read keys in the rolling window
	HotKeys(ctx context.Context, n int) []AccessCount

	// Close closes the cache connection
	Close() error

	// HealthCheck verifies cache connectivity
	HealthCheck(ctx context.Context) error

	// NewMutex builds a distributed lock, or nil when the backend has no
	// locking support; callers then proceed uncoordinated.
	NewMutex(name string, options ...redsync.Option) *redsync.Mutex
}

// Entry is a cached value plus the time it was written. The creation time
// survives independently of the remaining TTL so callers can age entries.
type Entry struct {
	Value     string
	CreatedAt time.Time
}

// Age returns how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// AccessCount pairs a key with its rolling-window read count.
type AccessCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// envelope is the stored wire form: the value plus its creation timestamp
// in unix milliseconds.
type envelope struct {
	V string `json:"v"`
	C int64  `json:"c"`
}

func encodeEnvelope(value string, createdAt time.Time) (string, error) {
	raw, err := json.Marshal(envelope{V: value, C: createdAt.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache envelope: %w", err)
	}
	return string(raw), nil
}

func decodeEnvelope(raw string) (*Entry, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache envelope: %w", err)
	}
	if env.C == 0 {
		return nil, fmt.Errorf("cache envelope missing creation time")
	}
	return &Entry{Value: env.V, CreatedAt: time.UnixMilli(env.C)}, nil
}
