package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request modes and outcomes used as metric labels.
const (
	modeStream = "stream"
	modeJSON   = "json"

	outcomeOK        = "ok"
	outcomeUpstream  = "upstream_error"
	outcomeMalformed = "malformed"
	outcomeCanceled  = "canceled"
	outcomeConfig    = "config_error"
)

var (
	llmReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Completion requests by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	// llmLat covers the whole call; for streams that is until the last
	// fragment or the failure.
	llmLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of completion requests in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"mode"},
	)

	llmFragments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_stream_fragments_total",
			Help: "Non-empty content fragments received from streaming completions.",
		},
	)
)

func init() {
	prometheus.MustRegister(llmReqs, llmLat, llmFragments)
}

func observe(mode, outcome string, start time.Time) {
	llmReqs.WithLabelValues(mode, outcome).Inc()
	llmLat.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
