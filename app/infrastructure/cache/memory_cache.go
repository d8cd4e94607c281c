package cache

import (
	"sort"
	"sync"
	"time"

	"nestiq.ai/listing-gateway/app/utils/logger"
)

// MemoryCache is the process-local tier: bounded, TTL-aware, no I/O.
// All operations complete without blocking on anything but the mutex.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*memoryEntry
	capacity int
	maxTTL   time.Duration

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
	currentSize int64

	sweepInterval time.Duration
	done          chan struct{}
	closeOnce     sync.Once
}

type memoryEntry struct {
	value        []byte
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
	hitCount     int64
	approxSize   int64
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewMemoryCache creates the local tier and starts its expiry sweeper.
// Call Close to stop the sweeper.
func NewMemoryCache(capacity int, maxTTL, sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]*memoryEntry),
		capacity:      capacity,
		maxTTL:        maxTTL,
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns a copy of the cached value and its creation time. Expired
// entries are removed on read and reported as misses.
func (c *MemoryCache) Get(key string) ([]byte, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, time.Time{}, false
	}
	now := time.Now()
	if entry.expired(now) {
		c.removeEntry(key, entry)
		c.expirations++
		c.misses++
		return nil, time.Time{}, false
	}
	entry.lastAccessed = now
	entry.hitCount++
	c.hits++

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, entry.createdAt, true
}

// Set stores a copy of value under key. A non-positive ttl falls back to
// DefaultTTL and every ttl is clamped to the configured local maximum, so a
// long shared-tier TTL never pins stale data in this tier.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	c.SetWithCreatedAt(key, value, ttl, time.Now())
}

// SetWithCreatedAt stores a value that was originally created at a known
// time, as when promoting a shared-tier entry; its age keeps counting from
// the original write.
func (c *MemoryCache) SetWithCreatedAt(key string, value []byte, ttl time.Duration, createdAt time.Time) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if existing, exists := c.entries[key]; exists {
		c.currentSize -= existing.approxSize
	} else {
		for len(c.entries) >= c.capacity {
			c.evictOldest()
		}
	}

	entry := &memoryEntry{
		value:        make([]byte, len(value)),
		createdAt:    createdAt,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
		approxSize:   int64(len(key) + len(value)),
	}
	copy(entry.value, value)
	c.entries[key] = entry
	c.currentSize += entry.approxSize
}

// Delete removes key and reports whether it was present.
func (c *MemoryCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return false
	}
	c.removeEntry(key, entry)
	return true
}

// Has checks for a live entry without touching access order or counters.
func (c *MemoryCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	return exists && !entry.expired(time.Now())
}

// InvalidatePattern removes every entry matching the pattern and returns
// how many were removed.
func (c *MemoryCache) InvalidatePattern(pattern string) (int, error) {
	prefix, wildcard, err := PatternPrefix(pattern)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !wildcard {
		if entry, exists := c.entries[pattern]; exists {
			c.removeEntry(pattern, entry)
			return 1, nil
		}
		return 0, nil
	}

	removed := 0
	for key, entry := range c.entries {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			c.removeEntry(key, entry)
			removed++
		}
	}
	if removed > 0 {
		logger.GetLogger().Debugf("memory cache: invalidated %d entries for pattern %s", removed, pattern)
	}
	return removed, nil
}

// Stats returns a snapshot of the tier's counters.
func (c *MemoryCache) Stats() MemoryCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return MemoryCacheStats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Entries:     len(c.entries),
		Bytes:       c.currentSize,
		HitRate:     hitRate,
	}
}

// HotKeys returns the n most-hit live entries, most hit first.
func (c *MemoryCache) HotKeys(n int) []HotKey {
	c.mu.RLock()
	now := time.Now()
	keys := make([]HotKey, 0, len(c.entries))
	for key, entry := range c.entries {
		if entry.expired(now) {
			continue
		}
		keys = append(keys, HotKey{
			Key:          key,
			Hits:         entry.hitCount,
			LastAccessed: entry.lastAccessed,
		})
	}
	c.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Hits != keys[j].Hits {
			return keys[i].Hits > keys[j].Hits
		}
		return keys[i].Key < keys[j].Key
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Close stops the sweeper. The cache stays usable afterwards; expired
// entries are then only reclaimed lazily on access.
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// evictOldest drops the entry with the oldest lastAccessed. Linear scan;
// fine for capacities in the low thousands.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest *memoryEntry
	for key, entry := range c.entries {
		if oldest == nil || entry.lastAccessed.Before(oldest.lastAccessed) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest == nil {
		return
	}
	c.removeEntry(oldestKey, oldest)
	c.evictions++
}

// removeEntry must be called with the write lock held.
func (c *MemoryCache) removeEntry(key string, entry *memoryEntry) {
	delete(c.entries, key)
	c.currentSize -= entry.approxSize
}

func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			c.removeEntry(key, entry)
			c.expirations++
			removed++
		}
	}
	if removed > 0 {
		logger.GetLogger().Debugf("memory cache: swept %d expired entries", removed)
	}
}

type MemoryCacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	Entries     int     `json:"entries"`
	Bytes       int64   `json:"bytes"`
	HitRate     float64 `json:"hit_rate"`
}

type HotKey struct {
	Key          string    `json:"key"`
	Hits         int64     `json:"hits"`
	LastAccessed time.Time `json:"last_accessed"`
}
