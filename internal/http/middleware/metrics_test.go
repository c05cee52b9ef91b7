package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteAndFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/personas/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/personas/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/personas/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/personas/:id", "200")); got != baseOK+1 {
		t.Fatalf("route counter = %v, want %v", got, baseOK+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404")); got != base404+1 {
		t.Fatalf("fallback counter = %v, want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight should return to 0, got %v", got)
	}
}

func TestMetrics_StreamAbortStillCounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.POST("/chat", func(c *gin.Context) {
		c.String(http.StatusOK, "0:\"x\"\n")
		StreamAborted(c)
		panic(http.ErrAbortHandler)
	})

	baseAbort := testutil.ToFloat64(httpStreamAborts.WithLabelValues("/chat"))
	baseReq := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/chat", "200"))

	func() {
		defer func() { _ = recover() }()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))
	}()

	if got := testutil.ToFloat64(httpStreamAborts.WithLabelValues("/chat")); got != baseAbort+1 {
		t.Fatalf("abort counter = %v", got)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/chat", "200")); got != baseReq+1 {
		t.Fatalf("aborted request should still be counted, got %v", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight leaked: %v", got)
	}
}
