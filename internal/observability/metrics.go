package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	auditEventsTotal    *prometheus.CounterVec
	auditSuppressed     *prometheus.CounterVec
	auditFailuresTotal  *prometheus.CounterVec
	auditPendingGauge   prometheus.Gauge
	auditPublishedTotal prometheus.Counter
	feedRequestsTotal   *prometheus.CounterVec
	feedLatencySeconds  prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors for the API and the audit trail.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Activity records appended, by category.",
		}, []string{"category"})

		auditSuppressed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_suppressed_total",
			Help: "Observed mutations that did not produce an activity record, by reason.",
		}, []string{"reason"})

		auditFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_failures_total",
			Help: "Audit pipeline failures swallowed to keep business operations running, by stage.",
		}, []string{"stage"})

		auditPendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "audit_snapshots_pending",
			Help: "Before-images captured and not yet consumed.",
		})

		auditPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_published_total",
			Help: "Activity records handed to the message broker after commit.",
		})

		feedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_feed_requests_total",
			Help: "Session activity feed requests by cache result.",
		}, []string{"result"})

		feedLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activity_feed_latency_seconds",
			Help:    "Latency of session activity feed lookups.",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			auditEventsTotal, auditSuppressed, auditFailuresTotal, auditPendingGauge, auditPublishedTotal,
			feedRequestsTotal, feedLatencySeconds,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AuditEvents counts appended activity records.
func AuditEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEventsTotal
}

// AuditSuppressed counts mutations that were observed but not recorded.
func AuditSuppressed() *prometheus.CounterVec {
	RegisterMetrics()
	return auditSuppressed
}

// AuditFailures counts swallowed audit errors.
func AuditFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return auditFailuresTotal
}

// AuditSnapshotsPending reports the snapshot store size.
func AuditSnapshotsPending() prometheus.Gauge {
	RegisterMetrics()
	return auditPendingGauge
}

// AuditPublished counts records published after commit.
func AuditPublished() prometheus.Counter {
	RegisterMetrics()
	return auditPublishedTotal
}

// ActivityFeedRequests counts feed lookups by hit, miss or error.
func ActivityFeedRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return feedRequestsTotal
}

// ActivityFeedLatency observes feed lookup latency.
func ActivityFeedLatency() prometheus.Histogram {
	RegisterMetrics()
	return feedLatencySeconds
}
