package cache

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"nestiq.ai/listing-gateway/app/domain/healthcheck"
	"nestiq.ai/listing-gateway/app/domain/invalidation"
	"nestiq.ai/listing-gateway/app/domain/query"
	"nestiq.ai/listing-gateway/app/domain/warming"
	infracache "nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/interfaces/http/responses"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

// CacheRoute exposes operational control over the cache engine: stats,
// invalidation, warming triggers and hot-key reports.
type CacheRoute struct {
	cacheService  *infracache.TieredCache
	healthService *healthcheck.Service
	invalidation  *invalidation.Manager
	engine        *warming.PrecomputeEngine
}

func NewCacheRoute(
	cacheService *infracache.TieredCache,
	healthService *healthcheck.Service,
	manager *invalidation.Manager,
	engine *warming.PrecomputeEngine,
) *CacheRoute {
	return &CacheRoute{
		cacheService:  cacheService,
		healthService: healthService,
		invalidation:  manager,
		engine:        engine,
	}
}

func (route *CacheRoute) RegisterRouter(router gin.IRouter) {
	cacheRouter := router.Group("/cache")
	cacheRouter.GET("/stats", route.GetStats)
	cacheRouter.POST("/invalidate", route.Invalidate)
	cacheRouter.POST("/warm", route.Warm)
	cacheRouter.GET("/hotkeys", route.GetHotKeys)
}

// GetStats godoc
// @Summary     Cache engine statistics
// @Description Returns per-tier counters, warming engine counters and the
// @Description health report.
// @Tags        admin
// @Produce     json
// @Success     200 {object} responses.GeneralResponse[CacheStatsResponse] "Engine statistics"
// @Router      /admin/v1/cache/stats [get]
func (route *CacheRoute) GetStats(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[CacheStatsResponse]{
		Status: responses.ResponseCodeOk,
		Result: CacheStatsResponse{
			Health:  route.healthService.Check(ctx),
			Cache:   route.cacheService.Stats(),
			Warming: route.engine.Stats(),
		},
	})
}

// Invalidate godoc
// @Summary     Invalidate cache entries
// @Description Removes entries by prefix pattern, or by key with optional
// @Description cascade over the dependency graph.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body CacheInvalidateRequest true "Pattern or key to invalidate"
// @Success     200 {object} responses.GeneralResponse[CacheInvalidateResponse] "Entries removed"
// @Failure     400 {object} responses.ErrorResponse "Malformed request or pattern"
// @Failure     500 {object} responses.ErrorResponse "Invalidation failed"
// @Router      /admin/v1/cache/invalidate [post]
func (route *CacheRoute) Invalidate(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var request CacheInvalidateRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "0e9c1f57-4f6b-4a8e-bb6b-3c1f8272f9e4",
			Error: "invalid invalidation request",
		})
		return
	}
	if (request.Pattern == "") == (request.Key == "") {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "b7a3a2de-57f0-4b29-a6ab-f97a5bb7c77d",
			Error: "exactly one of pattern or key is required",
		})
		return
	}
	if request.Cascade && request.Key == "" {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "8d0f7c11-3f33-4af0-bf1e-1d9be64de3a7",
			Error: "cascade applies to key invalidation only",
		})
		return
	}

	var removed int
	var err error
	switch {
	case request.Cascade:
		removed, err = route.invalidation.InvalidateWithDependencies(ctx, request.Key)
	case request.Key != "":
		removed, err = route.cacheService.InvalidatePattern(ctx, request.Key)
	default:
		removed, err = route.cacheService.InvalidatePattern(ctx, request.Pattern)
	}
	if err != nil {
		if errors.Is(err, infracache.ErrBadPattern) {
			reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
				Code:  "f3b7e1a9-0c2d-46a5-92b4-6f0d0e6a8f21",
				Error: err.Error(),
			})
			return
		}
		logger.GetLogger().Errorf("Cache invalidation failed: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code:  "a5c6d1f0-7e02-4d8e-8b31-91b51a3e04cd",
			Error: "failed to invalidate cache",
		})
		return
	}

	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[CacheInvalidateResponse]{
		Status: responses.ResponseCodeOk,
		Result: CacheInvalidateResponse{
			Removed: removed,
			Cascade: request.Cascade,
		},
	})
}

// Warm godoc
// @Summary     Trigger a warming run
// @Description Runs the precompute engine synchronously and returns its
// @Description summary. The run is skipped when another instance holds the
// @Description warm lock.
// @Tags        admin
// @Produce     json
// @Success     200 {object} responses.GeneralResponse[warming.WarmSummary] "Warming summary"
// @Router      /admin/v1/cache/warm [post]
func (route *CacheRoute) Warm(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	summary := route.engine.WarmAll(ctx)
	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[warming.WarmSummary]{
		Status: responses.ResponseCodeOk,
		Result: summary,
	})
}

// GetHotKeys godoc
// @Summary     Most-read cache keys
// @Tags        admin
// @Produce     json
// @Param       n query int false "Number of keys per tier" default(10)
// @Success     200 {object} responses.GeneralResponse[infracache.HotKeysReport] "Hot keys per tier"
// @Failure     400 {object} responses.ErrorResponse "Invalid n"
// @Router      /admin/v1/cache/hotkeys [get]
func (route *CacheRoute) GetHotKeys(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	n, err := query.TopN(reqCtx, 10, 100)
	if err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "4d2e9a61-8f45-4b0a-9e1f-c7b2f85d1a36",
			Error: err.Error(),
		})
		return
	}

	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[infracache.HotKeysReport]{
		Status: responses.ResponseCodeOk,
		Result: route.cacheService.HotKeys(ctx, n),
	})
}

// CacheStatsResponse aggregates everything an operator needs in one call.
type CacheStatsResponse struct {
	Health  healthcheck.Report     `json:"health"`
	Cache   infracache.TieredStats `json:"cache"`
	Warming warming.EngineStats    `json:"warming"`
}

type CacheInvalidateRequest struct {
	Pattern string `json:"pattern,omitempty"`
	Key     string `json:"key,omitempty"`
	Cascade bool   `json:"cascade,omitempty"`
}

type CacheInvalidateResponse struct {
	Removed int  `json:"removed"`
	Cascade bool `json:"cascade"`
}
