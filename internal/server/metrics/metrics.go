// Package metrics provides Prometheus metrics for the scholarkeeper server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scholarkeeper"

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request handling duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthEventsTotal counts session lifecycle events.
	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Total number of authentication events",
		},
		[]string{"event", "result"},
	)

	// CSRFRejectionsTotal counts requests rejected by CSRF validation.
	CSRFRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_rejections_total",
			Help:      "Total number of requests rejected by CSRF validation",
		},
	)

	// FavoritesAddedTotal counts add favorite calls by outcome.
	FavoritesAddedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorites_added_total",
			Help:      "Total number of add favorite calls",
		},
		[]string{"outcome"},
	)

	// UpstreamRequestsTotal counts calls to the scholar provider.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to the scholar provider",
		},
		[]string{"operation", "status"},
	)
)

// RecordAuth records a session lifecycle event.
func RecordAuth(event, result string) {
	AuthEventsTotal.WithLabelValues(event, result).Inc()
}

// RecordFavorite records an add favorite outcome ("created" or "existing").
func RecordFavorite(outcome string) {
	FavoritesAddedTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstream records a call to the scholar provider.
func RecordUpstream(operation, status string) {
	UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTP records a handled HTTP request.
func RecordHTTP(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
