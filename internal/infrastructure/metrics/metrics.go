package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry and every collector the service
// exports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	invocationsTotal    *prometheus.CounterVec
	invocationDuration  *prometheus.HistogramVec
	persistenceFailures *prometheus.CounterVec
	storeChanges        *prometheus.CounterVec
	timersRunning       prometheus.Gauge
}

// New creates the registry and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brain_invocations_total",
				Help: "Tool calls, component renders and actions by outcome",
			},
			[]string{"kind", "name", "outcome"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brain_invocation_duration_seconds",
				Help:    "Duration of tool calls, component renders and actions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "name"},
		),
		persistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brain_persistence_failures_total",
				Help: "Collection writes that did not reach the storage backend",
			},
			[]string{"collection"},
		),
		storeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brain_store_changes_total",
				Help: "Store mutations by collection and operation",
			},
			[]string{"collection", "op"},
		),
		timersRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brain_focus_timers_running",
			Help: "Focus timers currently counting down",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.invocationsTotal,
		m.invocationDuration,
		m.persistenceFailures,
		m.storeChanges,
		m.timersRunning,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per route
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	}
}

// ObserveInvocation records one registry invocation
func (m *Metrics) ObserveInvocation(kind, name string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.invocationsTotal.WithLabelValues(kind, name, outcome).Inc()
	m.invocationDuration.WithLabelValues(kind, name).Observe(elapsed.Seconds())
}

// PersistenceFailure counts a failed collection write
func (m *Metrics) PersistenceFailure(collection string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(collection).Inc()
}

// StoreChange counts a published store mutation
func (m *Metrics) StoreChange(collection, op string) {
	if m == nil {
		return
	}
	m.storeChanges.WithLabelValues(collection, op).Inc()
}

// TimerStarted and TimerStopped track running focus timers
func (m *Metrics) TimerStarted() {
	if m == nil {
		return
	}
	m.timersRunning.Inc()
}

func (m *Metrics) TimerStopped() {
	if m == nil {
		return
	}
	m.timersRunning.Dec()
}
