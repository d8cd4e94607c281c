package cache

import "time"

const (
	CacheVersion = "v1"

	SearchCacheKeyPattern  = CacheVersion + ":listings:search:%s"
	DetailCacheKeyPattern  = CacheVersion + ":listings:detail:%s"
	ImagesCacheKeyPattern  = CacheVersion + ":listings:images:%s"
	RecordCacheKeyPattern  = CacheVersion + ":listings:record:%s"
	PrecomputedKeyPattern  = CacheVersion + ":precomputed:%s"
	WarmingLockKey         = CacheVersion + ":warming:lock"
	HotKeysKey             = CacheVersion + ":hotkeys"
	PatternIndexKeyPrefix  = "idx:"
	AccessCounterKeyPrefix = "cnt:"
)

const (
	// DefaultTTL applies when a Set is issued with a zero duration.
	DefaultTTL = 5 * time.Minute
	// PatternIndexGrace keeps an index set alive slightly longer than its
	// longest member, so invalidation still sees keys about to expire.
	PatternIndexGrace = 5 * time.Minute
	// AccessCounterWindow is the rolling window for hot-key counters.
	AccessCounterWindow = 1 * time.Hour

	HighPriorityTTL   = 24 * time.Hour
	NormalPriorityTTL = 6 * time.Hour
	LowPriorityTTL    = 1 * time.Hour

	DefaultFreshTTL       = 2 * time.Minute
	DefaultStaleTTL       = 10 * time.Minute
	DefaultRefreshTimeout = 30 * time.Second
	DefaultRefreshWorkers = 8
)
