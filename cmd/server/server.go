package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mileusna/crontab"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/interfaces/http"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

const shutdownTimeout = 15 * time.Second

type Application struct {
	HttpServer  *http.HttpServer
	TieredCache *cache.TieredCache
	Engine      *warming.PrecomputeEngine
}

func (application *Application) Start() {
	if err := application.HttpServer.Run(); err != nil {
		panic(err)
	}
}

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
	if err := environment_variables.EnvironmentVariables.Validate(); err != nil {
		panic(err)
	}
	listinghub.Init()
}

// @title       Listing Gateway API
// @version     1.0
// @description Cached read gateway over the ListingHub provider.
// @BasePath    /
func main() {
	application, err := CreateApplication()
	if err != nil {
		panic(err)
	}

	ctab := crontab.New()
	cronService := warming.NewCronService(application.Engine)
	if err := cronService.Start(context.Background(), ctab); err != nil {
		panic(err)
	}

	go application.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.HttpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Errorf("HTTP server shutdown: %v", err)
	}
	ctab.Shutdown()
	if err := application.TieredCache.Close(); err != nil {
		logger.GetLogger().Errorf("Cache close: %v", err)
	}
}
