// Package metrics defines the Prometheus collectors for index builds and
// query evaluation, and exposes an HTTP handler for scraping. The engine
// itself serves no network surface; embedding applications decide whether
// and where to mount the handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	BuildsTotal        *prometheus.CounterVec
	BuildDuration      prometheus.Histogram
	DocsIndexedTotal   prometheus.Counter
	SearchesTotal      *prometheus.CounterVec
	SearchLatency      prometheus.Histogram
	SearchResultsCount prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airsearch_builds_total",
				Help: "Total index builds by status (ok, error).",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airsearch_build_duration_seconds",
				Help:    "Index build duration in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "airsearch_docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airsearch_searches_total",
				Help: "Total search queries by result type (hit, zero_result, no_index, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airsearch_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airsearch_search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
	}

	prometheus.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.DocsIndexedTotal,
		m.SearchesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
	)
	return m
}

// Handler returns the HTTP handler serving the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
