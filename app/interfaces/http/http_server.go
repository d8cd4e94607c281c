package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	deltapprof "github.com/grafana/pyroscope-go/godeltaprof/http/pprof"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"nestiq.ai/listing-gateway/app/domain/healthcheck"
	"nestiq.ai/listing-gateway/app/infrastructure/metrics"
	"nestiq.ai/listing-gateway/app/interfaces/http/middleware"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/admin"
	v1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/v1"
	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
	_ "nestiq.ai/listing-gateway/docs"
)

type HttpServer struct {
	engine     *gin.Engine
	v1Route    *v1.V1Route
	adminRoute *admin.AdminRoute
	server     *http.Server
}

func NewHttpServer(
	v1Route *v1.V1Route,
	adminRoute *admin.AdminRoute,
	healthService *healthcheck.Service,
	collector *metrics.Collector,
) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(logger.GetLogger()),
		middleware.CORS(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		report := healthService.Check(c.Request.Context())
		// degraded still serves from the local tier, so it stays 200
		status := http.StatusOK
		if report.Status == healthcheck.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})
	engine.GET("/metrics", gin.WrapH(collector.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/debug/pprof/delta_heap", gin.WrapF(deltapprof.Heap))
	engine.GET("/debug/pprof/delta_block", gin.WrapF(deltapprof.Block))
	engine.GET("/debug/pprof/delta_mutex", gin.WrapF(deltapprof.Mutex))

	return &HttpServer{
		engine:     engine,
		v1Route:    v1Route,
		adminRoute: adminRoute,
	}
}

func (httpServer *HttpServer) Run() error {
	rootRouter := httpServer.engine.Group("/")
	httpServer.v1Route.RegisterRouter(rootRouter)
	httpServer.adminRoute.RegisterRouter(rootRouter)

	httpServer.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", environment_variables.EnvironmentVariables.SERVER_PORT),
		Handler: httpServer.engine,
	}
	if err := httpServer.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (httpServer *HttpServer) Shutdown(ctx context.Context) error {
	if httpServer.server == nil {
		return nil
	}
	return httpServer.server.Shutdown(ctx)
}
