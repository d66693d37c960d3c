// Package metrics declares the Prometheus collectors exported on /metrics
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPLatency observes request latency by route pattern
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// AuthFailures counts rejected logins and sessions by reason code
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected logins and session validations.",
		},
		[]string{"reason"},
	)

	// CommentsModerated counts comment lifecycle transitions
	CommentsModerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_moderation_total",
			Help: "Comment submissions and moderation actions.",
		},
		[]string{"action"}, // submitted|approved|rejected|deleted
	)

	// LikeToggles counts like toggles by resulting state
	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "like_toggles_total",
			Help: "Like toggles by resulting state.",
		},
		[]string{"result"}, // liked|unliked|race
	)

	registerOnce sync.Once
)

// Handler serves the default registry
var Handler = promhttp.Handler

// Register adds all collectors to the default registry, it is safe to call more than once
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency, AuthFailures, CommentsModerated, LikeToggles)
	})
}
