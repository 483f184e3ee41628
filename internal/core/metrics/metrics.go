package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Tracking
	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec

	// Notifications
	NotificationsTotal     *prometheus.CounterVec
	NotificationQueueDepth prometheus.Gauge
	CircuitBreakerState    *prometheus.GaugeVec

	// Carrier integration
	CarrierMilestonesTotal *prometheus.CounterVec
}

// Config holds metrics configuration.
type Config struct {
	Namespace string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{Namespace: "cargo_tracker"}
}

// New creates and registers every collector.
func New(cfg *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	m.TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "transitions_total",
			Help:      "Container status transitions by target status and outcome",
		},
		[]string{"status", "source", "outcome"},
	)

	m.TransitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "transition_duration_seconds",
			Help:      "Read-validate-append duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"outcome"},
	)

	m.NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "notifications_total",
			Help:      "Notification intents by sender and outcome",
		},
		[]string{"sender", "outcome"},
	)

	m.NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "notification_queue_depth",
			Help:      "Notification intents waiting for a worker",
		},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	m.CarrierMilestonesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "carrier_milestones_total",
			Help:      "Carrier milestones seen during sync by outcome",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransitionsTotal,
		m.TransitionDuration,
		m.NotificationsTotal,
		m.NotificationQueueDepth,
		m.CircuitBreakerState,
		m.CarrierMilestonesTotal,
	)

	return m
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTransition records one transition attempt.
func (m *Metrics) RecordTransition(status, source, outcome string, duration time.Duration) {
	m.TransitionsTotal.WithLabelValues(status, source, outcome).Inc()
	m.TransitionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordNotification records one notification outcome.
func (m *Metrics) RecordNotification(sender, outcome string) {
	m.NotificationsTotal.WithLabelValues(sender, outcome).Inc()
}

// SetNotificationQueueDepth updates the queue gauge.
func (m *Metrics) SetNotificationQueueDepth(depth int) {
	m.NotificationQueueDepth.Set(float64(depth))
}

// SetCircuitBreakerState updates a breaker's state gauge.
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCarrierMilestone records what happened to one carrier milestone.
func (m *Metrics) RecordCarrierMilestone(outcome string) {
	m.CarrierMilestonesTotal.WithLabelValues(outcome).Inc()
}
