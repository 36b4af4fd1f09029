// Package metrics provides Prometheus metrics for the checklist importer.
// The server exposes them at /metrics; the CLI can write them to a textfile
// for the node exporter.
package metrics

import (
	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "group", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checklist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"group", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "checklist_http_requests_in_flight",
			Help: "Requests currently being served",
		},
		[]string{"group"}, // "api", "health", "unknown"
	)

	// SQL scripts are the large responses.
	HTTPResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checklist_http_response_bytes",
			Help:    "HTTP response body size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"group"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checklist_http_rate_limited_total",
			Help: "Requests rejected by the API rate limiter",
		},
	)

	// Import Metrics
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_import_runs_total",
			Help: "Total number of import runs by final status",
		},
		[]string{"status"}, // "completed", "aborted"
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_import_rows_total",
			Help: "Checklist rows processed by outcome",
		},
		[]string{"outcome"}, // "accepted", "review"
	)

	ImportIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_import_issues_total",
			Help: "Issues recorded during imports by level",
		},
		[]string{"level"}, // "info", "warning", "critical"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checklist_import_duration_seconds",
			Help:    "Time taken to process and persist one import run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Resolver Metrics
	ResolveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_resolve_requests_total",
			Help: "Single-label resolutions by confidence",
		},
		[]string{"confidence"}, // "high", "low"
	)

	ResolveCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checklist_resolve_cache_hits_total",
			Help: "Resolve cache hit count",
		},
	)

	ResolveCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checklist_resolve_cache_misses_total",
			Help: "Resolve cache miss count",
		},
	)

	// Catalog Metrics
	CatalogEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "checklist_catalog_entries",
			Help: "Number of normalized keys in each reference table",
		},
		[]string{"table"}, // "manufacturer", "brand", "theme", "variant"
	)
)

// RecordCatalog publishes the key count of each reference table.
func RecordCatalog(counts catalog.Counts) {
	CatalogEntries.WithLabelValues("manufacturer").Set(float64(counts.Manufacturers))
	CatalogEntries.WithLabelValues("brand").Set(float64(counts.Brands))
	CatalogEntries.WithLabelValues("theme").Set(float64(counts.Themes))
	CatalogEntries.WithLabelValues("variant").Set(float64(counts.Variants))
}

// WriteTextfile writes the default registry in the node exporter textfile
// format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
