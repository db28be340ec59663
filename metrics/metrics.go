// Package metrics provides Prometheus metrics for the dosing service.
//
// HTTP:
//   - http_request_total: counter with method, path and status labels
//   - http_request_duration_seconds: histogram with method and path labels
//   - http_request_in_flight: gauge for concurrent requests
//   - http_response_size_bytes: histogram of body sizes by path
//
// Domain:
//   - dose_evaluations_total: counter of evaluated rows by outcome
//   - dose_out_of_range_total: counter of evaluations with an out-of-range dose
//   - sessions_active: gauge of live calculator sessions
//   - catalog_drugs: gauge of drugs in the served catalog
//   - rate_limiter_buckets_total: gauge of tracked client buckets
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for DoseEvaluationsTotal besides the sentinel names.
const OutcomeQuantity = "quantity"

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

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(64, 4, 7),
		},
		[]string{"path"},
	)

	DoseEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dose_evaluations_total",
			Help: "Dose row evaluations by outcome (quantity or sentinel kind)",
		},
		[]string{"outcome"},
	)

	DoseOutOfRangeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dose_out_of_range_total",
			Help: "Dose row evaluations whose dose lies outside the resolved range",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Live calculator sessions",
		},
	)

	CatalogDrugs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_drugs",
			Help: "Drugs in the served catalog",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(DoseEvaluationsTotal)
	prometheus.MustRegister(DoseOutOfRangeTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(CatalogDrugs)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}

// RecordDoseEvaluation counts one evaluated row. An empty outcome means a
// quantity was produced.
func RecordDoseEvaluation(outcome string, outOfRange bool) {
	if outcome == "" {
		outcome = OutcomeQuantity
	}
	DoseEvaluationsTotal.WithLabelValues(outcome).Inc()
	if outOfRange {
		DoseOutOfRangeTotal.Inc()
	}
}
