// Package metrics provides Prometheus metrics for the dev server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devserver_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	filesServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserver_files_served_total",
			Help: "Static file lookups by outcome",
		},
		[]string{"outcome"},
	)

	bytesServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devserver_bytes_served_total",
			Help: "Total file bytes streamed to clients",
		},
	)

	activeStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devserver_active_streams",
			Help: "Number of file streams currently in flight",
		},
	)

	browserLaunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserver_browser_launches_total",
			Help: "Browser auto-open attempts",
		},
		[]string{"result"},
	)
)

// Outcomes for RecordLookup.
const (
	OutcomeServed   = "served"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordLookup records the outcome of resolving a request to a file.
func RecordLookup(outcome string) {
	filesServedTotal.WithLabelValues(outcome).Inc()
}

// StreamStarted marks a file stream as in flight. The returned func
// must be called once the stream ends, with the number of bytes written.
func StreamStarted() func(written int64) {
	activeStreams.Inc()
	return func(written int64) {
		activeStreams.Dec()
		bytesServedTotal.Add(float64(written))
	}
}

// RecordBrowserLaunch records a browser auto-open attempt.
func RecordBrowserLaunch(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	browserLaunchesTotal.WithLabelValues(result).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Paths are not used as labels since every file would become a series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, rw.statusCode, time.Since(start))
	})
}
