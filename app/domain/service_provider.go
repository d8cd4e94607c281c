package domain

import (
	"github.com/google/wire"
	"nestiq.ai/listing-gateway/app/domain/healthcheck"
	"nestiq.ai/listing-gateway/app/domain/invalidation"
	"nestiq.ai/listing-gateway/app/domain/listing"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// NewPrecomputeEngine builds the warming engine with its configured
// concurrency.
func NewPrecomputeEngine(tieredCache *cache.TieredCache, provider warming.ListingProvider) *warming.PrecomputeEngine {
	return warming.NewPrecomputeEngine(tieredCache, provider, environment_variables.EnvironmentVariables.WARMING_CONCURRENCY)
}

// NewInvalidationManager builds the manager over the gateway's dependency
// graph.
func NewInvalidationManager(tieredCache *cache.TieredCache) (*invalidation.Manager, error) {
	return invalidation.NewManager(tieredCache, invalidation.DefaultEdges())
}

var ServiceProvider = wire.NewSet(
	NewPrecomputeEngine,
	NewInvalidationManager,
	listing.NewListingService,
	healthcheck.NewService,
)
