package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts records admin login attempts by result (success|failure|limited).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"result"},
	)

	// CacheLookups counts cache-aside lookups per key namespace and outcome (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_cache_lookups_total",
			Help: "Cache-aside lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	// CacheWriteFailures counts cache writes that were dropped after a store error.
	CacheWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_cache_write_failures_total",
			Help: "Cache writes that failed and were skipped",
		},
		[]string{"namespace"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
