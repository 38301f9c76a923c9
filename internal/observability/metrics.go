package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightbook_requests_total",
			Help: "Total number of page requests",
		},
		[]string{"route", "code", "method"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightbook_backend_request_seconds",
			Help:    "Duration of booking API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "code"},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightbook_outbox_lag_seconds",
			Help: "Age of the oldest outbox record relayed in the last batch",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flightbook_rabbit_publish_retries_total",
			Help: "Total rabbit publish failures left for the next tick",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flightbook_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
