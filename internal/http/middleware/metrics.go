// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Labels use
// the registered Gin route rather than the raw URL so cardinality stays
// bounded:
//
//   - method: HTTP method verb
//   - path:   the registered route (e.g. /api/v1/personas/:id), or the raw
//     URL path when no route matched
//   - status: numeric status code as a string
//
// Streamed chat replies that end abnormally after the first byte are counted
// separately; their recorded status is whatever was written before the abort.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is omitted to keep the histogram small.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
				1 << 20, 2 << 20, 5 << 20,
			},
		},
		[]string{"method", "path"},
	)

	httpStreamAborts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_stream_aborts_total",
			Help: "Streamed responses terminated after the first byte.",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, httpStreamAborts)
}

// Metrics instruments requests with the collectors above. Mount
// promhttp.Handler() separately to expose them.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		// The deferred observation also runs when a handler aborts a stream
		// by panicking.
		defer func() {
			path := routePath(c)
			method := c.Request.Method
			httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
			httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			if size := c.Writer.Size(); size >= 0 {
				httpRespSize.WithLabelValues(method, path).Observe(float64(size))
			}
		}()

		c.Next()
	}
}

// StreamAborted records that the handler is about to abandon a response it
// already started writing.
func StreamAborted(c *gin.Context) {
	httpStreamAborts.WithLabelValues(routePath(c)).Inc()
}

func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
