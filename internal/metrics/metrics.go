package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelbridge_webhooks_total",
			Help: "Total number of webhooks received",
		},
		[]string{"status"},
	)

	EventsForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelbridge_events_forwarded_total",
			Help: "Total number of conversion events forwarded",
		},
		[]string{"event"},
	)

	ForwardErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelbridge_forward_errors_total",
			Help: "Total number of failed conversion event deliveries",
		},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelbridge_store_errors_total",
			Help: "Total number of client store failures",
		},
		[]string{"op"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelbridge_cache_hits_total",
			Help: "Total number of client cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelbridge_cache_misses_total",
			Help: "Total number of client cache misses",
		},
	)
)
