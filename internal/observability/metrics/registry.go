// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// World Bank client metrics track outbound API behavior
var (
	// WorldBankRequestsTotal counts outbound World Bank API requests by outcome.
	// Outcomes: "success", "no_data", "error", "circuit_open".
	WorldBankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldbank_requests_total",
			Help: "Total number of World Bank API requests by outcome",
		},
		[]string{"outcome"},
	)

	// WorldBankRequestDuration measures outbound request duration in seconds
	WorldBankRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worldbank_request_duration_seconds",
			Help:    "World Bank API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RateLimitWaitDuration measures time spent suspended on the
	// fixed-window admission gate before each request
	RateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worldbank_ratelimit_wait_duration_seconds",
			Help:    "Time spent waiting for rate limiter admission in seconds",
			Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Business metrics track population fetch, analysis, and export operations
var (
	// RangeFetchDuration measures the duration of full year-range fetches
	RangeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "population_range_fetch_duration_seconds",
			Help:    "Duration of population range fetches in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"country"},
	)

	// RecordsFetchedTotal counts valid population records fetched per country
	RecordsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "population_records_fetched_total",
			Help: "Total number of valid population records fetched",
		},
		[]string{"country"},
	)

	// RecordsMissingTotal counts years that yielded no valid observation
	RecordsMissingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "population_records_missing_total",
			Help: "Total number of requested years with no valid observation",
		},
		[]string{"country"},
	)

	// AnalysesTotal counts trend analyses by result ("ok" or "no_data")
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "population_analyses_total",
			Help: "Total number of trend analyses performed",
		},
		[]string{"result"},
	)

	// ExportsTotal counts export operations by format ("csv" or "xlsx")
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "population_exports_total",
			Help: "Total number of export operations",
		},
		[]string{"format"},
	)

	// ExportRows measures the number of rows written per export
	ExportRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "population_export_rows",
			Help:    "Number of data rows written per export",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
