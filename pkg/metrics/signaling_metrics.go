package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Signaling metrics for monitoring WebSocket connections and call lifecycle
var (
	// Connection metrics
	WebSocketConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_websocket_connections_active",
		Help: "Current number of authenticated WebSocket connections",
	})

	WebSocketAuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_websocket_auth_failures_total",
		Help: "Total number of rejected WebSocket auth attempts",
	})

	WebSocketConnectionsReplacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_websocket_connections_replaced_total",
		Help: "Total number of connections closed because the same user reconnected",
	})

	// Relay metrics
	SignalsRelayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_signals_relayed_total",
		Help: "Total number of signaling frames relayed between peers",
	}, []string{"type"})

	SignalRelayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_signal_relay_errors_total",
		Help: "Total number of relay attempts rejected",
	}, []string{"reason"})

	// Call lifecycle metrics
	CallsInitiatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_calls_initiated_total",
		Help: "Total number of calls initiated",
	}, []string{"kind"})

	CallsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_calls_completed_total",
		Help: "Total number of calls reaching a terminal state",
	}, []string{"status"})

	CallsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_calls_active",
		Help: "Current number of non-terminal calls",
	})

	CallDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signaling_call_duration_seconds",
		Help:    "Duration of accepted calls from connect to end",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
	})
)
