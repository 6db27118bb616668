package common

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP request metrics and blog lifecycle counters on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	blogEvents *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	blogEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_events_total",
		Help: "Blog lifecycle events by kind.",
	}, []string{"event"})

	reg.MustRegister(requests, latency, blogEvents)

	return &Metrics{
		registry:   reg,
		requests:   requests,
		latency:    latency,
		blogEvents: blogEvents,
	}
}

// Middleware records request count and duration.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.status)
		m.requests.WithLabelValues(r.Method, status).Inc()
		m.latency.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// BlogEvent increments the counter for a blog lifecycle event. Safe on a nil receiver.
func (m *Metrics) BlogEvent(event string) {
	if m == nil {
		return
	}
	m.blogEvents.WithLabelValues(event).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
