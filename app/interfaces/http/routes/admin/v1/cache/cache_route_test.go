package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nestiq.ai/listing-gateway/app/domain/healthcheck"
	"nestiq.ai/listing-gateway/app/domain/invalidation"
	"nestiq.ai/listing-gateway/app/domain/warming"
	infracache "nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/interfaces/http/responses"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

type stubProvider struct {
	mu   sync.Mutex
	page listinghub.ListingPage
}

func (p *stubProvider) SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	page := p.page
	return &page, nil
}

func (p *stubProvider) GetListing(ctx context.Context, id string) (*listinghub.Listing, error) {
	return &listinghub.Listing{ID: id, Title: "Loft downtown"}, nil
}

func (p *stubProvider) GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error) {
	return &listinghub.ImageVariantsResponse{ListingID: id}, nil
}

func setupCacheRoute(t *testing.T) (*gin.Engine, *infracache.TieredCache, *warming.PrecomputeEngine) {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	shared := infracache.NewRedisCacheServiceFromClient(client)
	local := infracache.NewMemoryCache(100, time.Hour, time.Minute)

	tc, err := infracache.NewTieredCache(local, shared, infracache.TieredCacheConfig{
		FreshTTL: 2 * time.Minute,
		StaleTTL: 10 * time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = tc.Close()
		mr.Close()
	})

	provider := &stubProvider{
		page: listinghub.ListingPage{
			Data:     []listinghub.Listing{{ID: "a1", Title: "Loft downtown", Price: 450000, City: "austin", Status: "active"}},
			Total:    1,
			Page:     1,
			PageSize: listinghub.DefaultPageSize,
		},
	}
	engine := warming.NewPrecomputeEngine(tc, provider, 2)
	manager, err := invalidation.NewManager(tc, invalidation.DefaultEdges())
	require.NoError(t, err)

	router := gin.New()
	NewCacheRoute(tc, healthcheck.NewService(tc), manager, engine).RegisterRouter(router.Group("/admin/v1"))
	return router, tc, engine
}

func getJSON(router *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, router *gin.Engine, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(http.MethodPost, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetStats_ReportsAllSections(t *testing.T) {
	router, tc, _ := setupCacheRoute(t)
	ctx := context.Background()
	require.NoError(t, tc.Set(ctx, infracache.SearchKey("q1"), "cached", time.Minute))

	rec := getJSON(router, "/admin/v1/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[CacheStatsResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, responses.ResponseCodeOk, resp.Status)
	assert.Equal(t, healthcheck.StatusHealthy, resp.Result.Health.Status)
	assert.Equal(t, 1, resp.Result.Cache.Local.Entries)
	assert.Equal(t, int64(0), resp.Result.Warming.Runs)
}

func TestInvalidate_Pattern(t *testing.T) {
	router, tc, _ := setupCacheRoute(t)
	ctx := context.Background()
	require.NoError(t, tc.Set(ctx, infracache.SearchKey("q1"), "one", time.Minute))
	require.NoError(t, tc.Set(ctx, infracache.SearchKey("q2"), "two", time.Minute))
	require.NoError(t, tc.Set(ctx, infracache.DetailKey("a1"), "detail", time.Minute))

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Pattern: "v1:listings:search:*"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[CacheInvalidateResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Result.Removed)
	assert.False(t, resp.Result.Cascade)
	assert.False(t, tc.Has(ctx, infracache.SearchKey("q1")))
	assert.False(t, tc.Has(ctx, infracache.SearchKey("q2")))
	assert.True(t, tc.Has(ctx, infracache.DetailKey("a1")))
}

func TestInvalidate_ExactKey(t *testing.T) {
	router, tc, _ := setupCacheRoute(t)
	ctx := context.Background()
	require.NoError(t, tc.Set(ctx, infracache.DetailKey("a1"), "detail", time.Minute))
	require.NoError(t, tc.Set(ctx, infracache.SearchKey("q1"), "search", time.Minute))

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Key: infracache.DetailKey("a1")})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[CacheInvalidateResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Result.Removed)
	assert.False(t, tc.Has(ctx, infracache.DetailKey("a1")))
	assert.True(t, tc.Has(ctx, infracache.SearchKey("q1")))
}

func TestInvalidate_CascadeFromRecord(t *testing.T) {
	router, tc, _ := setupCacheRoute(t)
	ctx := context.Background()
	require.NoError(t, tc.Set(ctx, infracache.RecordKey("a1"), "record", time.Minute))
	require.NoError(t, tc.Set(ctx, infracache.DetailKey("a1"), "detail", time.Minute))
	require.NoError(t, tc.Set(ctx, infracache.SearchKey("q1"), "search", time.Minute))

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Key: infracache.RecordKey("a1"), Cascade: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[CacheInvalidateResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Result.Removed)
	assert.True(t, resp.Result.Cascade)
	assert.False(t, tc.Has(ctx, infracache.RecordKey("a1")))
	assert.False(t, tc.Has(ctx, infracache.DetailKey("a1")))
	assert.False(t, tc.Has(ctx, infracache.SearchKey("q1")))
}

func TestInvalidate_RequiresExactlyOneSelector(t *testing.T) {
	router, _, _ := setupCacheRoute(t)

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Pattern: "v1:listings:search:*", Key: infracache.DetailKey("a1")})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exactly one of pattern or key is required", resp.Error)
}

func TestInvalidate_CascadeRequiresKey(t *testing.T) {
	router, _, _ := setupCacheRoute(t)

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Pattern: "v1:listings:search:*", Cascade: true})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cascade applies to key invalidation only", resp.Error)
}

func TestInvalidate_BadPattern(t *testing.T) {
	router, _, _ := setupCacheRoute(t)

	rec := postJSON(t, router, "/admin/v1/cache/invalidate", CacheInvalidateRequest{Pattern: "v1:*:search"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unsupported key pattern")
}

func TestWarm_RunsEngineSynchronously(t *testing.T) {
	router, _, engine := setupCacheRoute(t)

	rec := postJSON(t, router, "/admin/v1/cache/warm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[warming.WarmSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Result.Skipped)
	assert.Equal(t, 3, resp.Result.Queries)
	assert.Equal(t, 1, resp.Result.Details)
	assert.Equal(t, 1, resp.Result.Images)
	assert.Equal(t, 0, resp.Result.Failures)
	assert.Equal(t, int64(1), engine.Stats().Runs)
}

func TestGetHotKeys_ReportsLocalReads(t *testing.T) {
	router, tc, _ := setupCacheRoute(t)
	ctx := context.Background()
	key := infracache.DetailKey("a1")
	require.NoError(t, tc.Set(ctx, key, "detail", time.Minute))

	var dest string
	require.True(t, tc.Get(ctx, key, &dest))
	require.True(t, tc.Get(ctx, key, &dest))

	rec := getJSON(router, "/admin/v1/cache/hotkeys?n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.GeneralResponse[infracache.HotKeysReport]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Result.Local)
	assert.Equal(t, key, resp.Result.Local[0].Key)
	assert.GreaterOrEqual(t, resp.Result.Local[0].Hits, int64(2))
}

func TestGetHotKeys_InvalidN(t *testing.T) {
	router, _, _ := setupCacheRoute(t)

	rec := getJSON(router, "/admin/v1/cache/hotkeys?n=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
