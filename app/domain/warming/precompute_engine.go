package warming

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	"golang.org/x/sync/errgroup"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

const (
	DefaultConcurrency = 4

	// warmLockExpiry bounds how long a crashed instance can hold the
	// fleet-wide warm lock.
	warmLockExpiry = 10 * time.Minute
)

// Priority scales the storage TTL of a precomputed response.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) TTL() time.Duration {
	switch p {
	case PriorityHigh:
		return cache.HighPriorityTTL
	case PriorityLow:
		return cache.LowPriorityTTL
	default:
		return cache.NormalPriorityTTL
	}
}

// ResponseMetadata carries everything a handler needs to replay a precomputed
// response: suggested headers, status, generation time and a content
// fingerprint usable as an ETag.
type ResponseMetadata struct {
	Headers            map[string]string `json:"headers"`
	Status             int               `json:"status"`
	GeneratedAt        time.Time         `json:"generated_at"`
	ContentFingerprint string            `json:"content_fingerprint"`
}

type PrecomputedResponse struct {
	Payload  json.RawMessage  `json:"payload"`
	Metadata ResponseMetadata `json:"metadata"`
	Priority Priority         `json:"priority"`
}

type PrecomputeOptions struct {
	Priority Priority
	// TTL overrides the priority-derived storage window when positive.
	TTL time.Duration
}

// ListingProvider is the slice of the upstream client the warm plan needs.
type ListingProvider interface {
	SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error)
	GetListing(ctx context.Context, id string) (*listinghub.Listing, error)
	GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error)
}

// SearchFingerprint is the canonical cache identity of a provider search
// query. Both the search cache keys and the precomputed endpoints derive from
// it, so the warm writer and the request-path reader always agree.
func SearchFingerprint(query listinghub.SearchQuery) (string, error) {
	return cache.Fingerprint(query.Params())
}

func SearchEndpoint(fingerprint string) string {
	return "search:" + fingerprint
}

func DetailEndpoint(id string) string {
	return "detail:" + cache.SanitizeKeyPart(id)
}

// WarmQuery is one entry of the declared warm set.
type WarmQuery struct {
	Name     string
	Query    listinghub.SearchQuery
	Priority Priority
}

// DefaultWarmQueries is the fixed set every warm run recomputes: the landing
// pages almost every visitor hits first.
func DefaultWarmQueries() []WarmQuery {
	return []WarmQuery{
		{Name: "featured-page-1", Query: listinghub.SearchQuery{Sort: "featured", Page: 1, PageSize: listinghub.DefaultPageSize}, Priority: PriorityHigh},
		{Name: "featured-page-2", Query: listinghub.SearchQuery{Sort: "featured", Page: 2, PageSize: listinghub.DefaultPageSize}, Priority: PriorityHigh},
		{Name: "recent-page-1", Query: listinghub.SearchQuery{Sort: "recent", Page: 1, PageSize: listinghub.DefaultPageSize}, Priority: PriorityHigh},
	}
}

// WarmSummary reports a single warm run. Item failures are counted, never
// propagated: one broken query must not abort the batch.
type WarmSummary struct {
	Skipped    bool  `json:"skipped"`
	Queries    int   `json:"queries"`
	Details    int   `json:"details"`
	Images     int   `json:"images"`
	Failures   int   `json:"failures"`
	DurationMs int64 `json:"duration_ms"`
}

type EngineStats struct {
	Runs         int64 `json:"runs"`
	ItemFailures int64 `json:"item_failures"`
}

// PrecomputeEngine proactively computes full responses and stores them
// through the cache facade under the precomputed namespace. Serving never
// computes; it only reads what the engine pushed.
type PrecomputeEngine struct {
	cache       *cache.TieredCache
	provider    ListingProvider
	concurrency int

	mu       sync.Mutex
	inflight map[string]struct{}

	runs         atomic.Int64
	itemFailures atomic.Int64
}

func NewPrecomputeEngine(tieredCache *cache.TieredCache, provider ListingProvider, concurrency int) *PrecomputeEngine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &PrecomputeEngine{
		cache:       tieredCache,
		provider:    provider,
		concurrency: concurrency,
		inflight:    make(map[string]struct{}),
	}
}

// Precompute fetches a full response and stores it wrapped in metadata under
// the precomputed namespace. A call for an endpoint whose computation is
// already in flight returns immediately without fetching.
func (e *PrecomputeEngine) Precompute(ctx context.Context, endpoint string, fetch cache.FetchFunc, options PrecomputeOptions) error {
	if !e.claim(endpoint) {
		logger.GetLogger().Debugf("Precompute of %s already in flight, skipping", endpoint)
		return nil
	}
	defer e.release(endpoint)

	payload, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("precompute %s: %w", endpoint, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("precompute %s: serialize payload: %w", endpoint, err)
	}

	priority := options.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = priority.TTL()
	}

	response := PrecomputedResponse{
		Payload: raw,
		Metadata: ResponseMetadata{
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Cache-Control": fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())),
			},
			Status:             http.StatusOK,
			GeneratedAt:        time.Now(),
			ContentFingerprint: fmt.Sprintf("%x", sha256.Sum256(raw)),
		},
		Priority: priority,
	}
	if err := e.cache.Set(ctx, cache.PrecomputedKey(endpoint), response, ttl); err != nil {
		return fmt.Errorf("precompute %s: store: %w", endpoint, err)
	}
	return nil
}

// GetPrecomputed is a pure read of the precomputed namespace. It never
// triggers computation.
func (e *PrecomputeEngine) GetPrecomputed(ctx context.Context, endpoint string) (*PrecomputedResponse, bool) {
	var response PrecomputedResponse
	if !e.cache.Get(ctx, cache.PrecomputedKey(endpoint), &response) {
		return nil, false
	}
	return &response, true
}

// WarmAll runs the three warm phases: the declared query set, detail views
// for every listing those pages surfaced, and a best-effort image-variant
// preload for the same listings. At most one instance per fleet runs at a
// time; losing the lock race skips the run.
func (e *PrecomputeEngine) WarmAll(ctx context.Context) WarmSummary {
	start := time.Now()
	var summary WarmSummary

	if mutex := e.cache.NewMutex(cache.WarmingLockKey, redsync.WithExpiry(warmLockExpiry), redsync.WithTries(1)); mutex != nil {
		if err := mutex.TryLockContext(ctx); err != nil {
			logger.GetLogger().Infof("Warm run skipped, another instance holds the lock: %v", err)
			summary.Skipped = true
			return summary
		}
		defer func() {
			if _, err := mutex.UnlockContext(ctx); err != nil {
				logger.GetLogger().Warnf("Failed to release warming lock: %v", err)
			}
		}()
	}

	var queries, details, images, failures atomic.Int64

	primary := e.warmQueries(ctx, &queries, &failures)
	e.warmDetails(ctx, primary, &details, &failures)
	e.warmImages(ctx, primary, &images, &failures)

	e.runs.Add(1)
	e.itemFailures.Add(failures.Load())

	summary.Queries = int(queries.Load())
	summary.Details = int(details.Load())
	summary.Images = int(images.Load())
	summary.Failures = int(failures.Load())
	summary.DurationMs = time.Since(start).Milliseconds()
	logger.GetLogger().Infof("Warm run finished: %d queries, %d details, %d images, %d failures in %dms",
		summary.Queries, summary.Details, summary.Images, summary.Failures, summary.DurationMs)
	return summary
}

// warmQueries recomputes the declared query set and returns the listings the
// primary pages surfaced, deduplicated by id.
func (e *PrecomputeEngine) warmQueries(ctx context.Context, queries, failures *atomic.Int64) []listinghub.Listing {
	var pagesMu sync.Mutex
	var primary []listinghub.Listing
	seen := make(map[string]struct{})

	group := e.boundedGroup()
	for _, warmQuery := range DefaultWarmQueries() {
		warmQuery := warmQuery
		group.Go(func() error {
			fingerprint, err := SearchFingerprint(warmQuery.Query)
			if err == nil {
				err = e.Precompute(ctx, SearchEndpoint(fingerprint), func(fctx context.Context) (any, error) {
					page, fetchErr := e.provider.SearchListings(fctx, warmQuery.Query)
					if fetchErr != nil {
						return nil, fetchErr
					}
					pagesMu.Lock()
					for _, item := range page.Data {
						if _, dup := seen[item.ID]; !dup {
							seen[item.ID] = struct{}{}
							primary = append(primary, item)
						}
					}
					pagesMu.Unlock()
					return page, nil
				}, PrecomputeOptions{Priority: warmQuery.Priority})
			}
			if err != nil {
				failures.Add(1)
				logger.GetLogger().Warnf("Warm query %s failed: %v", warmQuery.Name, err)
				return nil
			}
			queries.Add(1)
			return nil
		})
	}
	_ = group.Wait()
	return primary
}

func (e *PrecomputeEngine) warmDetails(ctx context.Context, primary []listinghub.Listing, details, failures *atomic.Int64) {
	group := e.boundedGroup()
	for _, item := range primary {
		item := item
		group.Go(func() error {
			err := e.Precompute(ctx, DetailEndpoint(item.ID), func(fctx context.Context) (any, error) {
				return e.provider.GetListing(fctx, item.ID)
			}, PrecomputeOptions{Priority: PriorityNormal})
			if err != nil {
				failures.Add(1)
				logger.GetLogger().Warnf("Warm detail %s failed: %v", item.ID, err)
				return nil
			}
			details.Add(1)
			return nil
		})
	}
	_ = group.Wait()
}

// warmImages preloads image-variant metadata into the regular cache
// namespace with a long storage TTL; reads stay governed by their own SWR
// windows and fall back to these entries when the provider is down.
func (e *PrecomputeEngine) warmImages(ctx context.Context, primary []listinghub.Listing, images, failures *atomic.Int64) {
	group := e.boundedGroup()
	for _, item := range primary {
		item := item
		group.Go(func() error {
			variants, err := e.provider.GetImageVariants(ctx, item.ID)
			if err == nil {
				err = e.cache.Set(ctx, cache.ImagesKey(item.ID), variants, cache.HighPriorityTTL)
			}
			if err != nil {
				failures.Add(1)
				logger.GetLogger().Warnf("Warm images %s failed: %v", item.ID, err)
				return nil
			}
			images.Add(1)
			return nil
		})
	}
	_ = group.Wait()
}

func (e *PrecomputeEngine) boundedGroup() *errgroup.Group {
	var group errgroup.Group
	group.SetLimit(e.concurrency)
	return &group
}

func (e *PrecomputeEngine) Stats() EngineStats {
	return EngineStats{
		Runs:         e.runs.Load(),
		ItemFailures: e.itemFailures.Load(),
	}
}

func (e *PrecomputeEngine) claim(endpoint string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[endpoint]; busy {
		return false
	}
	e.inflight[endpoint] = struct{}{}
	return true
}

func (e *PrecomputeEngine) release(endpoint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, endpoint)
}
