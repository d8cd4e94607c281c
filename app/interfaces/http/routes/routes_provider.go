package routes

import (
	"github.com/google/wire"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/admin"
	adminv1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1"
	admincache "nestiq.ai/listing-gateway/app/interfaces/http/routes/admin/v1/cache"
	v1 "nestiq.ai/listing-gateway/app/interfaces/http/routes/v1"
	"nestiq.ai/listing-gateway/app/interfaces/http/routes/v1/listings"
)

var RouteProvider = wire.NewSet(
	listings.NewListingRoute,
	v1.NewV1Route,
	admincache.NewCacheRoute,
	adminv1.NewV1Route,
	wire.Value(admin.AdminMiddleware(nil)),
	admin.NewAdminRoute,
)
