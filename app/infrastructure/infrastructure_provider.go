package infrastructure

import (
	"github.com/google/wire"
	"nestiq.ai/listing-gateway/app/domain/listing"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/infrastructure/metrics"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

var InfrastructureProvider = wire.NewSet(
	listinghub.NewClient,
	wire.Bind(new(metrics.UpstreamProvider), new(*listinghub.Client)),
	metrics.NewInstrumentedProvider,
	wire.Bind(new(listing.Provider), new(*metrics.InstrumentedProvider)),
	wire.Bind(new(warming.ListingProvider), new(*metrics.InstrumentedProvider)),
	metrics.NewCollector,
	cache.NewCacheService,
	cache.NewLocalCache,
	cache.NewTieredCacheService,
)
