// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method, path, and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voyago_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// MessagesSent counts persisted messages by payload type.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_messages_sent_total",
		Help: "Messages persisted, by payload type.",
	}, []string{"type"})

	// WishlistSaves counts wishlist save attempts by outcome.
	WishlistSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_wishlist_saves_total",
		Help: "Wishlist save attempts, by outcome (created, duplicate).",
	}, []string{"outcome"})

	// ActiveConnections gauges open WebSocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voyago_ws_connections",
		Help: "Currently open WebSocket connections.",
	})
)
