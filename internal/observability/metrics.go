package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// ChatChannelConnections is the gauge of WebSocket connections per chat channel.
	ChatChannelConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ripple_chat_channel_connections",
		Help: "Number of WebSocket connections per chat channel",
	}, []string{"channel"})

	// ChatMessageThroughput counts chat messages processed per channel and type.
	ChatMessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_chat_message_throughput_total",
		Help: "Total number of chat messages processed",
	}, []string{"channel", "message_type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationsEmitted counts derived notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_emitted_total",
		Help: "Total number of notifications emitted by type",
	}, []string{"type"})
)

// ObserveQuery records the latency of a finished database query. Wired into
// the gorm logger so every query is observed without per-callsite plumbing.
func ObserveQuery(operation string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordWebSocketEvent increments the WebSocket events counter for the event type.
func RecordWebSocketEvent(eventType string) {
	WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordNotification increments the emitted notifications counter for the type.
func RecordNotification(notiType string) {
	NotificationsEmitted.WithLabelValues(notiType).Inc()
}
