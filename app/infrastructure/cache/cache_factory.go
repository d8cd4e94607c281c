package cache

import (
	"strings"

	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// NewCacheService creates a shared-tier cache service based on configuration
func NewCacheService() CacheService {
	cacheType := strings.ToLower(environment_variables.EnvironmentVariables.CACHE_TYPE)

	// Default to Redis if no cache type is specified
	if cacheType == "" {
		cacheType = "redis"
	}

	switch cacheType {
	case "redis":
		return NewRedisCacheService()
	case "valkey":
		return NewValkeyCacheService()
	case "none":
		return &NoOpCacheService{}
	default:
		logger.GetLogger().Warnf("Unknown CACHE_TYPE %q, falling back to redis", cacheType)
		return NewRedisCacheService()
	}
}

// NewLocalCache creates the process-local tier from configuration.
func NewLocalCache() *MemoryCache {
	env := environment_variables.EnvironmentVariables
	return NewMemoryCache(env.CACHE_LOCAL_CAPACITY, env.CACHE_LOCAL_MAX_TTL, env.CACHE_SWEEP_INTERVAL)
}

// NewTieredCacheService assembles the facade over the configured tiers.
func NewTieredCacheService(local *MemoryCache, shared CacheService) (*TieredCache, error) {
	env := environment_variables.EnvironmentVariables
	return NewTieredCache(local, shared, TieredCacheConfig{
		FreshTTL:       env.CACHE_FRESH_TTL,
		StaleTTL:       env.CACHE_STALE_TTL,
		RefreshWorkers: env.CACHE_REFRESH_WORKERS,
	})
}
