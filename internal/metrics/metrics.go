// Package metrics provides Prometheus metrics for the interaction check workflow.
// It exports:
//   - ddi_requests_total: Counter with endpoint and outcome labels
//   - ddi_request_duration_seconds: Histogram with endpoint label
//   - ddi_validation_failures_total: Counter with reason label
//   - ddi_submissions_in_flight: Gauge for pending submissions
//   - ddi_suggestion_cache_total: Counter with tier and result labels
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	OutcomeSuccess = "success"
	OutcomeServer  = "server_error"
	OutcomeNetwork = "network_error"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddi_requests_total",
			Help: "Total requests sent to the assessment service",
		},
		[]string{"endpoint", "outcome"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddi_request_duration_seconds",
			Help:    "Assessment service request latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddi_validation_failures_total",
			Help: "Submissions rejected before reaching the network",
		},
		[]string{"reason"},
	)

	SubmissionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddi_submissions_in_flight",
			Help: "Submissions awaiting a response",
		},
	)

	SuggestionCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddi_suggestion_cache_total",
			Help: "Suggestion cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ValidationFailures)
	prometheus.MustRegister(SubmissionsInFlight)
	prometheus.MustRegister(SuggestionCache)
}

// ObserveRequest records one finished call to the assessment service.
func ObserveRequest(endpoint, outcome string, started time.Time) {
	RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
