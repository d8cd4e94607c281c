package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/v1/listings"
	"nestiq.ai/listing-gateway/config"
)

type V1Route struct {
	listingRoute *listings.ListingRoute
}

func NewV1Route(listingRoute *listings.ListingRoute) *V1Route {
	return &V1Route{
		listingRoute,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Route.listingRoute.RegisterRouter(v1Router)
}

// GetVersion godoc
// @Summary     Get API build version
// @Description Returns the current build version of the gateway.
// @Tags        system
// @Produce     json
// @Success     200 {object} map[string]string "version info"
// @Router      /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": config.Version,
	})
}
