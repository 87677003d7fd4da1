package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillsocket_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillsocket_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Messaging metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillsocket_messages_sent_total",
			Help: "Total messages persisted",
		},
	)

	MessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillsocket_messages_delivered_total",
			Help: "Total delivery acknowledgements emitted to senders",
		},
	)

	MessagesSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillsocket_messages_seen_total",
			Help: "Total messages flipped to seen",
		},
	)

	TypingEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillsocket_typing_events_total",
			Help: "Total typing indicator events relayed",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillsocket_notifications_dispatched_total",
			Help: "Total out-of-band notifications dispatched",
		},
		[]string{"status"}, // "ok" or "error"
	)

	// Connection metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skillsocket_ws_connections",
			Help: "Currently registered realtime connections",
		},
	)
)
