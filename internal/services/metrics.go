package services

import "github.com/prometheus/client_golang/prometheus"

// Feedback kinds used as metric labels.
const (
	kindMessage      = "message"
	kindConversation = "conversation"
)

// feedbackScore records the normalized scores handed back to clients.
var feedbackScore = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "coach_feedback_score",
		Help:    "Normalized coaching scores returned by the feedback endpoints.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(feedbackScore)
}
