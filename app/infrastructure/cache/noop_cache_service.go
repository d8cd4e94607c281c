package cache

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
)

// NoOpCacheService provides a no-operation cache service for graceful
// degradation: every read is a miss, every write a no-op.
type NoOpCacheService struct{}

// Set is a no-op implementation
func (n *NoOpCacheService) Set(ctx context.Context, key string, value string, expiration time.Duration) {
}

// SetMultiple is a no-op implementation
func (n *NoOpCacheService) SetMultiple(ctx context.Context, entries map[string]string, expiration time.Duration) {
}

// Get always reports a miss
func (n *NoOpCacheService) Get(ctx context.Context, key string) (string, bool) {
	return "", false
}

// GetEntry always reports a miss
func (n *NoOpCacheService) GetEntry(ctx context.Context, key string) (*Entry, bool) {
	return nil, false
}

// GetMultiple always returns an empty result
func (n *NoOpCacheService) GetMultiple(ctx context.Context, keys []string) map[string]string {
	return map[string]string{}
}

// Delete is a no-op implementation
func (n *NoOpCacheService) Delete(ctx context.Context, key string) bool {
	return false
}

// Unlink is a no-op implementation
func (n *NoOpCacheService) Unlink(ctx context.Context, key string) {
}

// DeletePattern validates the pattern and removes nothing
func (n *NoOpCacheService) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if _, _, err := PatternPrefix(pattern); err != nil {
		return 0, err
	}
	return 0, nil
}

// Exists always returns false
func (n *NoOpCacheService) Exists(ctx context.Context, key string) bool {
	return false
}

// AccessCount always returns zero
func (n *NoOpCacheService) AccessCount(ctx context.Context, key string) int64 {
	return 0
}

// HotKeys always returns an empty result
func (n *NoOpCacheService) HotKeys(ctx context.Context, count int) []AccessCount {
	return nil
}

// Close is a no-op implementation
func (n *NoOpCacheService) Close() error {
	return nil
}

// HealthCheck always returns nil (healthy)
func (n *NoOpCacheService) HealthCheck(ctx context.Context) error {
	return nil
}

// NewMutex returns nil; the no-op backend has no distributed locking.
func (n *NoOpCacheService) NewMutex(name string, options ...redsync.Option) *redsync.Mutex {
	return nil
}
