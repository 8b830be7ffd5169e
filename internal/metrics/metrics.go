// Package metrics provides Prometheus metrics for the blog writer service.
package metrics

import (
	"time"

	"github.com/ai-blog-writer/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blogwriter"

var (
	// ProviderAttemptsTotal counts provider attempts by outcome.
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Total number of provider call attempts",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderAttemptDuration measures a single attempt.
	ProviderAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Duration of provider call attempts in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// GenerationsTotal counts generation requests by kind and result.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of generation requests",
		},
		[]string{"kind", "provider", "result"},
	)

	// DemoFallbacksTotal counts demo content substitutions by reason.
	DemoFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demo_fallbacks_total",
			Help:      "Total number of responses served from demo content",
		},
		[]string{"provider", "reason"},
	)

	// HTTPRequestsTotal counts HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ScheduleTransitionsTotal counts schedule status changes.
	ScheduleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_transitions_total",
			Help:      "Total number of schedule status transitions",
		},
		[]string{"from", "to"},
	)
)

// ProviderObserver feeds provider attempts into the attempt metrics.
type ProviderObserver struct{}

// ObserveAttempt implements provider.Observer.
func (ProviderObserver) ObserveAttempt(p provider.Provider, outcome string, elapsed time.Duration) {
	RecordProviderAttempt(p.String(), outcome, elapsed)
}

// RecordProviderAttempt records one provider attempt.
func RecordProviderAttempt(providerName, outcome string, elapsed time.Duration) {
	ProviderAttemptsTotal.WithLabelValues(providerName, outcome).Inc()
	ProviderAttemptDuration.WithLabelValues(providerName).Observe(elapsed.Seconds())
}

// RecordGeneration records a generation request. result is "live" or "demo".
func RecordGeneration(kind, providerName, result string) {
	GenerationsTotal.WithLabelValues(kind, providerName, result).Inc()
}

// RecordDemoFallback records a demo content substitution.
func RecordDemoFallback(providerName, reason string) {
	DemoFallbacksTotal.WithLabelValues(providerName, reason).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, route, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordScheduleTransition records a schedule status change.
func RecordScheduleTransition(from, to string) {
	ScheduleTransitionsTotal.WithLabelValues(from, to).Inc()
}
