package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

const (
	opSearch = "search"
	opDetail = "detail"
	opImages = "images"
)

// UpstreamProvider is the slice of the listinghub client the gateway calls.
type UpstreamProvider interface {
	SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error)
	GetListing(ctx context.Context, id string) (*listinghub.Listing, error)
	GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error)
}

// InstrumentedProvider times every upstream call. It satisfies the provider
// interfaces of both the listing service and the warming engine, so one
// decorator covers request-path and warm-path fetches alike.
type InstrumentedProvider struct {
	next    UpstreamProvider
	observe *prometheus.HistogramVec
}

// NewInstrumentedProvider wraps an upstream client. The histogram it owns is
// picked up by the Collector's registry, not the global one.
func NewInstrumentedProvider(next UpstreamProvider) *InstrumentedProvider {
	return &InstrumentedProvider{
		next: next,
		observe: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_fetch_seconds",
				Help:    "Upstream provider fetch latency in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "outcome"},
		),
	}
}

func (p *InstrumentedProvider) SearchListings(ctx context.Context, query listinghub.SearchQuery) (*listinghub.ListingPage, error) {
	start := time.Now()
	page, err := p.next.SearchListings(ctx, query)
	p.observe.WithLabelValues(opSearch, outcome(err)).Observe(time.Since(start).Seconds())
	return page, err
}

func (p *InstrumentedProvider) GetListing(ctx context.Context, id string) (*listinghub.Listing, error) {
	start := time.Now()
	listing, err := p.next.GetListing(ctx, id)
	p.observe.WithLabelValues(opDetail, outcome(err)).Observe(time.Since(start).Seconds())
	return listing, err
}

func (p *InstrumentedProvider) GetImageVariants(ctx context.Context, id string) (*listinghub.ImageVariantsResponse, error) {
	start := time.Now()
	variants, err := p.next.GetImageVariants(ctx, id)
	p.observe.WithLabelValues(opImages, outcome(err)).Observe(time.Since(start).Seconds())
	return variants, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
