package intake

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_sessions_started_total",
			Help: "Total intake sessions created, by entry mode.",
		},
		[]string{"entry_mode"},
	)
	escalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_intake_escalations_total",
			Help: "Total sessions escalated to a live specialist.",
		},
	)
	leadScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_intake_lead_score",
			Help:    "Distribution of submitted lead scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsStarted, escalations, leadScores)
}

func observeSessionStarted(entryMode string) {
	sessionsStarted.WithLabelValues(entryMode).Inc()
}

func observeEscalation() {
	escalations.Inc()
}

func observeLeadScore(score int) {
	leadScores.Observe(float64(score))
}
