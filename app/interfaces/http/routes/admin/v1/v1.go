package v1

import (
	"github.com/gin-gonic/gin"
	cacheroute "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1/cache"
)

type V1Route struct {
	cache *cacheroute.CacheRoute
}

func NewV1Route(cache *cacheroute.CacheRoute) *V1Route {
	return &V1Route{
		cache,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Route.cache.RegisterRouter(v1Router)
}
