package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nestiq.ai/listing-gateway/app/domain/invalidation"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

// Image-variant metadata changes rarely and is expensive upstream, so its
// stale window matches the warming engine's preload TTL.
const (
	imagesFreshTTL = time.Hour
	imagesStaleTTL = cache.HighPriorityTTL
)

// Provider is the slice of the upstream client the service fetches through.
type Provider interface {
	SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error)
	GetListing(ctx context.Context, id string) (*listinghub.Listing, error)
	GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error)
}

// SearchResult carries a listings page plus, for precomputed hits, the
// replay metadata the handler needs.
type SearchResult struct {
	Page        *listinghub.ListingPage
	Precomputed bool
	Metadata    *warming.ResponseMetadata
}

type DetailResult struct {
	Listing     *listinghub.Listing
	Precomputed bool
	Metadata    *warming.ResponseMetadata
}

// ListingService serves listings through the cache engine: precomputed
// responses when the warming engine has them, stale-while-revalidate
// everywhere else. It never talks to the provider except through fetchers
// handed to the facade.
type ListingService struct {
	cache        *cache.TieredCache
	provider     Provider
	engine       *warming.PrecomputeEngine
	invalidation *invalidation.Manager
}

func NewListingService(tieredCache *cache.TieredCache, provider Provider, engine *warming.PrecomputeEngine, manager *invalidation.Manager) *ListingService {
	return &ListingService{
		cache:        tieredCache,
		provider:     provider,
		engine:       engine,
		invalidation: manager,
	}
}

// Search serves a listings page, preferring a precomputed response when the
// warming engine pushed one for this exact query.
func (s *ListingService) Search(ctx context.Context, filter SearchFilter) (*SearchResult, error) {
	query := filter.Normalized().Upstream()
	fingerprint, err := warming.SearchFingerprint(query)
	if err != nil {
		return nil, fmt.Errorf("derive search key: %w", err)
	}

	if response, ok := s.engine.GetPrecomputed(ctx, warming.SearchEndpoint(fingerprint)); ok {
		var page listinghub.ListingPage
		if uerr := json.Unmarshal(response.Payload, &page); uerr == nil {
			return &SearchResult{Page: &page, Precomputed: true, Metadata: &response.Metadata}, nil
		}
		logger.GetLogger().Warnf("Undecodable precomputed search payload for %s", fingerprint)
	}

	var page listinghub.ListingPage
	err = s.cache.GetWithSWR(ctx, cache.SearchKey(fingerprint), &page, func(fctx context.Context) (any, error) {
		return s.provider.SearchListings(fctx, query)
	}, cache.SWROptions{})
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return &SearchResult{Page: &page}, nil
}

// GetByID serves one listing, preferring the warm detail view.
func (s *ListingService) GetByID(ctx context.Context, id string) (*DetailResult, error) {
	if response, ok := s.engine.GetPrecomputed(ctx, warming.DetailEndpoint(id)); ok {
		var item listinghub.Listing
		if uerr := json.Unmarshal(response.Payload, &item); uerr == nil {
			return &DetailResult{Listing: &item, Precomputed: true, Metadata: &response.Metadata}, nil
		}
		logger.GetLogger().Warnf("Undecodable precomputed detail payload for %s", id)
	}

	var item listinghub.Listing
	err := s.cache.GetWithSWR(ctx, cache.DetailKey(id), &item, func(fctx context.Context) (any, error) {
		return s.provider.GetListing(fctx, id)
	}, cache.SWROptions{})
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	return &DetailResult{Listing: &item}, nil
}

// ImageVariants serves image-variant metadata under long SWR windows.
func (s *ListingService) ImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error) {
	var variants listinghub.ImageVariantsResponse
	err := s.cache.GetWithSWR(ctx, cache.ImagesKey(id), &variants, func(fctx context.Context) (any, error) {
		return s.provider.GetImageVariants(fctx, id)
	}, cache.SWROptions{FreshTTL: imagesFreshTTL, StaleTTL: imagesStaleTTL})
	if err != nil {
		return nil, fmt.Errorf("get image variants %s: %w", id, err)
	}
	return &variants, nil
}

// RecordChanged is the entry point for provider change notifications: the
// record key cascades into every derivation built on it.
func (s *ListingService) RecordChanged(ctx context.Context, id string) (int, error) {
	return s.invalidation.InvalidateWithDependencies(ctx, cache.RecordKey(id))
}
