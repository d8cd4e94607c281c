//go:build wireinject

package main

import (
	"github.com/google/wire"
	"nestiq.ai/listing-gateway/app/domain"
	"nestiq.ai/listing-gateway/app/infrastructure"
	"nestiq.ai/listing-gateway/app/interfaces/http"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		domain.ServiceProvider,
		routes.RouteProvider,
		http.NewHttpServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
