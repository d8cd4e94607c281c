package listings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"nestiq.ai/listing-gateway/app/domain/listing"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/interfaces/http/responses"
	"nestiq.ai/listing-gateway/app/utils/functional"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

// ListingRoute serves the public listings read API.
type ListingRoute struct {
	listingService *listing.ListingService
}

func NewListingRoute(listingService *listing.ListingService) *ListingRoute {
	return &ListingRoute{
		listingService: listingService,
	}
}

func (route *ListingRoute) RegisterRouter(router gin.IRouter) {
	listingsRouter := router.Group("/listings")
	listingsRouter.GET("", route.SearchListings)
	listingsRouter.GET("/:id", route.GetListing)
	listingsRouter.GET("/:id/images", route.GetImageVariants)
}

// SearchListings godoc
// @Summary     Search listings
// @Description Returns a page of listings matching the filter. Responses are served
// @Description from the cache engine; warm default queries come from precomputed
// @Description responses and carry an X-Precomputed header.
// @Tags        listings
// @Produce     json
// @Param       city query string false "City, case-insensitive"
// @Param       min_price query int false "Minimum price"
// @Param       max_price query int false "Maximum price"
// @Param       bedrooms query int false "Minimum bedroom count"
// @Param       status query string false "Listing status"
// @Param       sort query string false "Sort order"
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} responses.ListlResponse[ListingResponse] "Listings page"
// @Failure     400 {object} responses.ErrorResponse "Invalid filter"
// @Failure     502 {object} responses.ErrorResponse "Upstream fetch failed"
// @Router      /v1/listings [get]
func (route *ListingRoute) SearchListings(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var filter listing.SearchFilter
	if err := reqCtx.ShouldBindQuery(&filter); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "7f1de319-7c04-4de2-a2cf-92f5f09dbd95",
			Error: "invalid search filter",
		})
		return
	}

	result, err := route.listingService.Search(ctx, filter)
	if err != nil {
		logger.GetLogger().Errorf("Search listings failed: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusBadGateway, responses.ErrorResponse{
			Code:  "c39aa2de-8a4b-4a36-9d2f-0f5c0e62b1d4",
			Error: "failed to search listings",
		})
		return
	}

	setPrecomputedHeaders(reqCtx, result.Precomputed, result.Metadata)
	reqCtx.JSON(http.StatusOK, responses.ListlResponse[ListingResponse]{
		Status:   responses.ResponseCodeOk,
		Page:     result.Page.Page,
		PageSize: result.Page.PageSize,
		Total:    int64(result.Page.Total),
		Results:  functional.Map(result.Page.Data, listingToResponse),
	})
}

// GetListing godoc
// @Summary     Get a listing
// @Description Returns one listing by id, from the precomputed store when the
// @Description warming engine holds a fresh detail view.
// @Tags        listings
// @Produce     json
// @Param       id path string true "Listing ID"
// @Success     200 {object} responses.GeneralResponse[ListingResponse] "Listing"
// @Failure     404 {object} responses.ErrorResponse "Listing not found"
// @Failure     502 {object} responses.ErrorResponse "Upstream fetch failed"
// @Router      /v1/listings/{id} [get]
func (route *ListingRoute) GetListing(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()
	id := reqCtx.Param("id")

	result, err := route.listingService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, listinghub.ErrNotFound) {
			reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.ErrorResponse{
				Code:  "3f8e01c2-97be-4ce8-8f43-a2b50cc5a6ea",
				Error: "listing not found",
			})
			return
		}
		logger.GetLogger().Errorf("Get listing %s failed: %v", id, err)
		reqCtx.AbortWithStatusJSON(http.StatusBadGateway, responses.ErrorResponse{
			Code:  "89f1cc7a-9df3-44c7-a4b9-6b0a9a1ce6d3",
			Error: "failed to fetch listing",
		})
		return
	}

	setPrecomputedHeaders(reqCtx, result.Precomputed, result.Metadata)
	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[ListingResponse]{
		Status: responses.ResponseCodeOk,
		Result: listingToResponse(*result.Listing),
	})
}

// GetImageVariants godoc
// @Summary     List image variants for a listing
// @Tags        listings
// @Produce     json
// @Param       id path string true "Listing ID"
// @Success     200 {object} responses.GeneralResponse[ImageVariantsResponse] "Image variants"
// @Failure     404 {object} responses.ErrorResponse "Listing not found"
// @Failure     502 {object} responses.ErrorResponse "Upstream fetch failed"
// @Router      /v1/listings/{id}/images [get]
func (route *ListingRoute) GetImageVariants(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()
	id := reqCtx.Param("id")

	variants, err := route.listingService.ImageVariants(ctx, id)
	if err != nil {
		if errors.Is(err, listinghub.ErrNotFound) {
			reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.ErrorResponse{
				Code:  "5a7e7f2d-6b77-4f7e-9c93-4cf7a23f1b88",
				Error: "listing not found",
			})
			return
		}
		logger.GetLogger().Errorf("Get image variants for %s failed: %v", id, err)
		reqCtx.AbortWithStatusJSON(http.StatusBadGateway, responses.ErrorResponse{
			Code:  "d41c3d6e-41a3-4b94-9485-27c4f0f2f3ab",
			Error: "failed to fetch image variants",
		})
		return
	}

	reqCtx.JSON(http.StatusOK, responses.GeneralResponse[ImageVariantsResponse]{
		Status: responses.ResponseCodeOk,
		Result: ImageVariantsResponse{
			ListingID: variants.ListingID,
			Variants:  functional.Map(variants.Variants, imageVariantToResponse),
		},
	})
}

// setPrecomputedHeaders replays the headers stored with a precomputed
// response and marks the response as warm-served.
func setPrecomputedHeaders(reqCtx *gin.Context, precomputed bool, metadata *warming.ResponseMetadata) {
	if !precomputed || metadata == nil {
		return
	}
	reqCtx.Header("X-Precomputed", "true")
	for name, value := range metadata.Headers {
		reqCtx.Header(name, value)
	}
	if metadata.ContentFingerprint != "" {
		reqCtx.Header("ETag", `"`+metadata.ContentFingerprint+`"`)
	}
}

type ListingResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	City        string   `json:"city"`
	Address     string   `json:"address,omitempty"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	AreaSqm     float64  `json:"area_sqm"`
	Status      string   `json:"status"`
	ImageIDs    []string `json:"image_ids,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

type ImageVariantResponse struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ImageVariantsResponse struct {
	ListingID string                 `json:"listing_id"`
	Variants  []ImageVariantResponse `json:"variants"`
}

func listingToResponse(l listinghub.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Currency:    l.Currency,
		City:        l.City,
		Address:     l.Address,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		AreaSqm:     l.AreaSqm,
		Status:      l.Status,
		ImageIDs:    l.ImageIDs,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func imageVariantToResponse(v listinghub.ImageVariant) ImageVariantResponse {
	return ImageVariantResponse{
		Label:  v.Label,
		URL:    v.URL,
		Width:  v.Width,
		Height: v.Height,
	}
}
