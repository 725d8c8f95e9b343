package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus registry and collectors.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	authzDecisions    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pharmacy_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_operations_total",
		Help: "Service operations by name and outcome.",
	}, []string{"operation", "outcome"})
	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pharmacy_operation_duration_seconds",
		Help:    "Service operation duration by name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_authorization_decisions_total",
		Help: "Authorization guard decisions by kind and result.",
	}, []string{"kind", "result"})
	registry.MustRegister(requests, duration, operations, operationDuration, decisions)
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		operationsTotal:   operations,
		operationDuration: operationDuration,
		authzDecisions:    decisions,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveDecision counts an authorization outcome, e.g. ("permission", "denied").
func (m *Metrics) ObserveDecision(kind, result string) {
	if m == nil {
		return
	}
	m.authzDecisions.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// WithMetrics counts op's outcome and observes its duration under name.
func WithMetrics[T any](m *Metrics, name string, op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	if m == nil {
		return op
	}
	return func(ctx context.Context) (T, error) {
		start := time.Now()
		result, err := op(ctx)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.operationsTotal.WithLabelValues(name, outcome).Inc()
		m.operationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		return result, err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
