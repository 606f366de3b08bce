package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_intake_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_intake_ws_rooms",
			Help: "Current number of websocket rooms (session feeds plus the console feed).",
		},
	)
	wsEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_intake_ws_events_delivered_total",
			Help: "Total websocket events delivered to observers.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsSessions, wsEventsDelivered)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setSessions(count int) {
	wsSessions.Set(float64(count))
}

func addDelivered(count int) {
	wsEventsDelivered.Add(float64(count))
}
