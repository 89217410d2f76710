package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResetRequests counts code issuance by outcome
	// (issued|dev_fallback|not_found|invalid|transport_error|storage_error).
	ResetRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_password_reset_requests_total",
			Help: "Total number of password reset code requests",
		},
		[]string{"outcome"},
	)

	// ResetVerifications counts reset submissions by outcome.
	ResetVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_password_reset_verifications_total",
			Help: "Total number of password reset code verifications",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
