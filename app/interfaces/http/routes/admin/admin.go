package admin

import (
	"github.com/gin-gonic/gin"
	v1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// AdminMiddleware is the chain deployed in front of every admin endpoint.
// The gateway ships none of its own; authentication is an external
// collaborator and gets bound here by the deployment.
type AdminMiddleware []gin.HandlerFunc

type AdminRoute struct {
	v1Route    *v1.V1Route
	middleware AdminMiddleware
}

func NewAdminRoute(v1Route *v1.V1Route, middleware AdminMiddleware) *AdminRoute {
	return &AdminRoute{
		v1Route:    v1Route,
		middleware: middleware,
	}
}

func (adminRoute *AdminRoute) RegisterRouter(router gin.IRouter) {
	if !environment_variables.EnvironmentVariables.ENABLE_ADMIN_API {
		return
	}
	adminRouter := router.Group("/admin", adminRoute.middleware...)
	adminRoute.v1Route.RegisterRouter(adminRouter)
}
