// Package metrics provides Prometheus metrics for the search page.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
	OutcomeCanceled   = "canceled"
)

// SearchMetrics contains all Prometheus metrics related to result resolution.
type SearchMetrics struct {
	Resolutions        *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	ResultCount        prometheus.Histogram
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CatalogImages      prometheus.Gauge
	CatalogLoaded      prometheus.Gauge
}

// NewSearchMetrics creates a new instance of SearchMetrics and registers it
// with the given registry.
func NewSearchMetrics(registry prometheus.Registerer) (*SearchMetrics, error) {
	m := &SearchMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register search metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for SearchMetrics.
func (m *SearchMetrics) initMetrics() {
	m.Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_resolutions_total",
		Help: "Total number of result resolutions by outcome.",
	}, []string{"outcome"})

	m.ResolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_resolution_duration_seconds",
		Help:    "Duration of result resolutions in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	m.ResultCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_result_count",
		Help:    "Number of results returned per successful resolution.",
		Buckets: prometheus.LinearBuckets(0, 4, 10),
	})

	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_hits_total",
		Help: "Total number of result cache hits.",
	})

	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_misses_total",
		Help: "Total number of result cache misses.",
	})

	m.CatalogImages = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "search_catalog_images",
		Help: "Number of images in the loaded catalog.",
	})

	m.CatalogLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "search_catalog_loaded_timestamp_seconds",
		Help: "Unix time the current catalog snapshot was loaded.",
	})
}

// ObserveResolution records one finished resolution.
func (m *SearchMetrics) ObserveResolution(outcome string, durationSeconds float64, results int) {
	m.Resolutions.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.Observe(durationSeconds)
	if outcome == OutcomeOK {
		m.ResultCount.Observe(float64(results))
	}
}

// CacheHit increases the cache hit counter by one.
func (m *SearchMetrics) CacheHit() {
	m.CacheHits.Inc()
}

// CacheMiss increases the cache miss counter by one.
func (m *SearchMetrics) CacheMiss() {
	m.CacheMisses.Inc()
}

// SetCatalog updates the catalog gauges after a load.
func (m *SearchMetrics) SetCatalog(images int, loadedAt time.Time) {
	m.CatalogImages.Set(float64(images))
	m.CatalogLoaded.Set(float64(loadedAt.UnixNano()) / 1e9)
}

// Collect implements the prometheus.Collector interface.
func (m *SearchMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Resolutions.Collect(ch)
	ch <- m.ResolutionDuration
	ch <- m.ResultCount
	ch <- m.CacheHits
	ch <- m.CacheMisses
	ch <- m.CatalogImages
	ch <- m.CatalogLoaded
}

// Describe implements the prometheus.Collector interface.
func (m *SearchMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Resolutions.Describe(ch)
	ch <- m.ResolutionDuration.Desc()
	ch <- m.ResultCount.Desc()
	ch <- m.CacheHits.Desc()
	ch <- m.CacheMisses.Desc()
	ch <- m.CatalogImages.Desc()
	ch <- m.CatalogLoaded.Desc()
}
