package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// MetricsCollector defines the interface for collecting metrics.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop() float64
}

// MetricsMiddleware provides metrics collection middleware.
type MetricsMiddleware struct {
	collector MetricsCollector
}

// NewMetricsMiddleware creates a new metrics middleware.
func NewMetricsMiddleware(collector MetricsCollector) *MetricsMiddleware {
	return &MetricsMiddleware{
		collector: collector,
	}
}

// Handler returns the metrics collection handler. Requests are labeled by
// the chi route pattern, not the raw path, to keep label cardinality
// bounded.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := m.collector.StartTimer("http_request_duration")
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		duration := timer.Stop()

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.collector.IncrementCounter("http_requests_total", "method", r.Method, "route", route)
		m.collector.IncrementCounter("http_responses_total", "method", r.Method, "route", route, "status", strconv.Itoa(status))
		m.collector.RecordHistogram("http_request_duration_seconds", duration, "method", r.Method, "route", route)
	})
}

// routePattern reports the matched chi pattern, falling back to the raw
// path for unmatched requests.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
