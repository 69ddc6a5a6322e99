// Package metrics defines the Prometheus collectors for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Number of HTTP requests currently being processed",
	})
)

// WebSocket lifecycle metrics
var (
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_websocket_connections",
		Help: "Current number of live WebSocket connections",
	})

	WebSocketConnectionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_websocket_connection_total",
		Help: "Total number of accepted WebSocket connections",
	})

	WebSocketMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_websocket_messages_total",
		Help: "Total number of WebSocket frames",
	}, []string{"direction"}) // "in" for received, "out" for sent

	WebSocketErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_websocket_errors_total",
		Help: "Total number of WebSocket errors",
	}, []string{"error_type"})
)

// Broadcast metrics
var (
	BroadcastDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_broadcast_delivered_total",
		Help: "Total number of payloads delivered to proximity recipients",
	})

	BroadcastDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_broadcast_dropped_total",
		Help: "Total number of payloads dropped before delivery",
	}, []string{"reason"})
)

// Message store metrics
var (
	MessagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_created_total",
		Help: "Total number of messages persisted",
	})

	MessagesEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_evicted_total",
		Help: "Total number of expired messages reclaimed",
	})

	MessageStoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_message_store_size",
		Help: "Current number of stored messages",
	})
)

// Call metrics
var (
	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_calls_total",
		Help: "Total number of initiated calls",
	}, []string{"call_type"})
)
