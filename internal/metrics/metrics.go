// Package metrics exposes mixerd's Prometheus instrumentation: HTTP request
// metrics for the debug API, command throughput, and the graph-size/capture
// gauges the Collector reads straight out of the session at scrape time.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mixerd"

// HTTP metrics (counter/histogram — incremented by middleware).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed by the debug API.",
	}, []string{"method", "path_pattern", "status_code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path_pattern"})

	HTTPResponseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_size_bytes",
		Help:      "HTTP response size in bytes.",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 5),
	}, []string{"method", "path_pattern"})
)

// Command/event counters (incremented directly by the session and its
// observers — the transport hub and the automation client).
var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Commands executed against the PipeWire graph, by kind.",
	}, []string{"kind"})

	StateEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_events_total",
		Help:      "StateEvents folded into the replica.",
	})

	TransportClientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "transport_clients_connected",
		Help:      "Currently connected WebSocket transport clients.",
	})

	AutomationMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "automation_messages_total",
		Help:      "Messages relayed to the automation MQTT broker.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPResponseSize,
		CommandsTotal,
		StateEventsTotal,
		TransportClientsConnected,
		AutomationMessagesTotal,
	)
}

// InstrumentHandler returns middleware that records HTTP request metrics.
// It uses chi's route pattern as the path label to avoid cardinality
// explosion from literal ids in the URL.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unknown"
		}
		method := r.Method
		status := strconv.Itoa(sw.status)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(method, pattern, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, pattern).Observe(duration)
		HTTPResponseSize.WithLabelValues(method, pattern).Observe(float64(sw.written))
	})
}

// statusWriter wraps http.ResponseWriter to capture status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Unwrap supports http.ResponseController and middleware that check for
// wrapped writers (e.g. http.Flusher for SSE-style streaming).
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
