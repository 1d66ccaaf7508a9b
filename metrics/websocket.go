package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for frame streaming
type WebSocketMetrics struct {
	ActiveConnections prometheus.Gauge
	FramesPublished   prometheus.Counter
	SlowClientsDrops  prometheus.Counter
}

// NewWebSocketMetrics creates and registers websocket metrics on the given registry
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket connections.",
		}),
		FramesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_published_total",
			Help:      "Total number of frames broadcast to clients.",
		}),
		SlowClientsDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "slow_client_drops_total",
			Help:      "Total number of frames dropped for slow clients.",
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.FramesPublished, m.SlowClientsDrops)
	return m
}
