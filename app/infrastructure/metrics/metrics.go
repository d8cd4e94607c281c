package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/infrastructure/cache"
)

const (
	tierLocal  = "local"
	tierShared = "shared"
)

// Collector exposes engine counters on a dedicated prometheus registry.
// Cache and warming totals are read from stats snapshots at scrape time, so
// those packages carry no metrics plumbing; only upstream fetch latency is
// observed directly, by the InstrumentedProvider whose histogram joins this
// registry.
type Collector struct {
	registry *prometheus.Registry

	cache  *cache.TieredCache
	engine *warming.PrecomputeEngine

	hits            *prometheus.Desc
	misses          *prometheus.Desc
	evictions       *prometheus.Desc
	staleServes     *prometheus.Desc
	refreshes       *prometheus.Desc
	refreshFailures *prometheus.Desc
	inflight        *prometheus.Desc
	warmRuns        *prometheus.Desc
	warmFailures    *prometheus.Desc
}

func NewCollector(tieredCache *cache.TieredCache, engine *warming.PrecomputeEngine, upstream *InstrumentedProvider) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cache:    tieredCache,
		engine:   engine,
		hits: prometheus.NewDesc(
			"cache_hits_total", "Total cache hits per tier", []string{"tier"}, nil),
		misses: prometheus.NewDesc(
			"cache_misses_total", "Total cache misses per tier", []string{"tier"}, nil),
		evictions: prometheus.NewDesc(
			"cache_evictions_total", "Local tier capacity evictions", nil, nil),
		staleServes: prometheus.NewDesc(
			"cache_stale_serves_total", "Responses served stale while revalidating", nil, nil),
		refreshes: prometheus.NewDesc(
			"cache_background_refresh_total", "Completed background revalidations", nil, nil),
		refreshFailures: prometheus.NewDesc(
			"cache_refresh_failures_total", "Failed background revalidations", nil, nil),
		inflight: prometheus.NewDesc(
			"cache_inflight_refreshes", "Background revalidations currently running", nil, nil),
		warmRuns: prometheus.NewDesc(
			"warming_runs_total", "Completed warming runs", nil, nil),
		warmFailures: prometheus.NewDesc(
			"warming_item_failures_total", "Warming items that failed", nil, nil),
	}
	c.registry.MustRegister(c)
	if upstream != nil {
		c.registry.MustRegister(upstream.observe)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.staleServes
	ch <- c.refreshes
	ch <- c.refreshFailures
	ch <- c.inflight
	ch <- c.warmRuns
	ch <- c.warmFailures
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Local.Hits), tierLocal)
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.SharedHits), tierShared)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Local.Misses), tierLocal)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.SharedMisses), tierShared)
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Local.Evictions))
	ch <- prometheus.MustNewConstMetric(c.staleServes, prometheus.CounterValue, float64(stats.StaleServes))
	ch <- prometheus.MustNewConstMetric(c.refreshes, prometheus.CounterValue, float64(stats.BackgroundRefreshes))
	ch <- prometheus.MustNewConstMetric(c.refreshFailures, prometheus.CounterValue, float64(stats.RefreshFailures))
	ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(stats.InflightRefreshes))

	engineStats := c.engine.Stats()
	ch <- prometheus.MustNewConstMetric(c.warmRuns, prometheus.CounterValue, float64(engineStats.Runs))
	ch <- prometheus.MustNewConstMetric(c.warmFailures, prometheus.CounterValue, float64(engineStats.ItemFailures))
}

// Handler serves the dedicated registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
