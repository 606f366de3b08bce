package console

import "github.com/prometheus/client_golang/prometheus"

var liveSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "lead_intake_live_sessions",
		Help: "Sessions currently owned by a live operator.",
	},
)

func init() {
	prometheus.MustRegister(liveSessions)
}

func incLiveSessions() {
	liveSessions.Inc()
}

func decLiveSessions() {
	liveSessions.Dec()
}
