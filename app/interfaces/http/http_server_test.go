package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nestiq.ai/listing-gateway/app/domain/healthcheck"
	"nestiq.ai/listing-gateway/app/domain/invalidation"
	"nestiq.ai/listing-gateway/app/domain/listing"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/infrastructure/metrics"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/admin"
	adminv1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1"
	cacheroute "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1/cache"
	v1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/v1"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/v1/listings"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

type noopProvider struct{}

func (noopProvider) SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error) {
	return &listinghub.ListingPage{Page: query.Page, PageSize: query.PageSize}, nil
}

func (noopProvider) GetListing(ctx context.Context, id string) (*listinghub.Listing, error) {
	return &listinghub.Listing{ID: id}, nil
}

func (noopProvider) GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error) {
	return &listinghub.ImageVariantsResponse{ListingID: id}, nil
}

func setupServer(t *testing.T) (*HttpServer, *cache.TieredCache) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	shared := cache.NewRedisCacheServiceFromClient(client)
	local := cache.NewMemoryCache(100, time.Hour, time.Minute)

	tc, err := cache.NewTieredCache(local, shared, cache.TieredCacheConfig{
		FreshTTL: 2 * time.Minute,
		StaleTTL: 10 * time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = tc.Close()
		mr.Close()
	})

	provider := metrics.NewInstrumentedProvider(noopProvider{})
	engine := warming.NewPrecomputeEngine(tc, provider, 2)
	manager, err := invalidation.NewManager(tc, invalidation.DefaultEdges())
	require.NoError(t, err)
	service := listing.NewListingService(tc, provider, engine, manager)
	healthService := healthcheck.NewService(tc)
	collector := metrics.NewCollector(tc, engine, provider)

	v1Route := v1.NewV1Route(listings.NewListingRoute(service))
	adminRoute := admin.NewAdminRoute(
		adminv1.NewV1Route(cacheroute.NewCacheRoute(tc, healthService, manager, engine)),
		nil,
	)
	return NewHttpServer(v1Route, adminRoute, healthService, collector), tc
}

func serve(server *HttpServer, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthzHealthy(t *testing.T) {
	server, _ := setupServer(t)

	rec := serve(server, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHealthzUnhealthyAfterClose(t *testing.T) {
	server, tc := setupServer(t)
	require.NoError(t, tc.Close())

	rec := serve(server, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestRequestIDHeaderAssigned(t *testing.T) {
	server, _ := setupServer(t)

	rec := serve(server, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpointServesCacheFamilies(t *testing.T) {
	server, _ := setupServer(t)

	rec := serve(server, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "cache_hits_total"), "missing cache_hits_total in %s", body)
	assert.Contains(t, body, "warming_runs_total")
	assert.Contains(t, body, "cache_inflight_refreshes 0")
}

func TestDeltaProfilesExposed(t *testing.T) {
	server, _ := setupServer(t)

	rec := serve(server, "/debug/pprof/delta_heap")
	assert.Equal(t, http.StatusOK, rec.Code)
}
