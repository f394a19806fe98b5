// Package metrics provides Prometheus metrics collection for the NDC
// retrieval service. It covers the HTTP serving side (request counts,
// latency, in-flight gauge) and the extraction side (RxNav call
// outcomes per endpoint, dataset sizes, extraction duration).
//
// All metrics are registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~30 minutes)",
		},
	)

	// RxNavRequestsTotal counts remote calls by endpoint and outcome
	// (ok, empty, failed). The extraction collapses empty and failed
	// into "no data", this counter keeps them apart.
	RxNavRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rxnav_requests_total",
			Help: "Total RxNav API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	ExtractionRecordsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extraction_records_total",
			Help: "Records in the last completed extraction, including records without an NDC",
		},
	)

	ExtractionConceptsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extraction_concepts_total",
			Help: "Retained drug product concepts in the last completed extraction",
		},
	)

	ExtractionDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extraction_duration_seconds",
			Help: "Wall time of the last completed extraction",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(RxNavRequestsTotal)
	prometheus.MustRegister(ExtractionRecordsTotal)
	prometheus.MustRegister(ExtractionConceptsTotal)
	prometheus.MustRegister(ExtractionDuration)
}
