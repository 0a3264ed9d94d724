package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics for one invocation. The process is
// short-lived, so metrics are flushed to a node-exporter textfile instead of
// being served.
type Metrics struct {
	config MetricsConfig

	registryOps      *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec

	resolverOps    *prometheus.CounterVec
	errorsByKind   *prometheus.CounterVec
	attributeWrite *prometheus.CounterVec

	lastRun prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance: every Record* method returns early.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		registryOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registry_operations_total",
				Help:      "Total number of registry operations",
			},
			[]string{"operation", "scope", "result"},
		),
		registryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "registry_operation_duration_seconds",
				Help:      "Duration of registry operations in seconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),
		resolverOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolver_operations_total",
				Help:      "Total number of configuration resolver operations",
			},
			[]string{"operation", "result"},
		),
		errorsByKind: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by kind",
			},
			[]string{"kind"},
		),
		attributeWrite: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attribute_writes_total",
				Help:      "Total number of attribute writes",
			},
			[]string{"scope", "attribute"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last invocation",
			},
		),
	}

	registry.MustRegister(
		m.registryOps,
		m.registryDuration,
		m.resolverOps,
		m.errorsByKind,
		m.attributeWrite,
		m.lastRun,
	)

	return m, nil
}

// Enabled reports whether metrics are collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.registry != nil
}

// RecordRegistryOperation records one backend round trip.
func (m *Metrics) RecordRegistryOperation(operation, scope string, err error, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.registryOps.WithLabelValues(operation, scope, result).Inc()
	m.registryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordResolverOperation records one resolver call and, on failure, its error kind.
func (m *Metrics) RecordResolverOperation(operation, errorKind string) {
	if !m.Enabled() {
		return
	}
	result := "ok"
	if errorKind != "" {
		result = "error"
		m.errorsByKind.WithLabelValues(errorKind).Inc()
	}
	m.resolverOps.WithLabelValues(operation, result).Inc()
}

// RecordAttributeWrite counts a successful attribute write.
func (m *Metrics) RecordAttributeWrite(scope, attribute string) {
	if !m.Enabled() {
		return
	}
	m.attributeWrite.WithLabelValues(scope, attribute).Inc()
}

// WriteCounter returns a subscriber counting attribute.changed events as writes.
func (m *Metrics) WriteCounter() EventSubscriber {
	return func(event Event) {
		m.RecordAttributeWrite(event.Scope, event.Attribute)
	}
}

// Gatherer exposes the private registry, or nil when disabled.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if !m.Enabled() {
		return nil
	}
	return m.registry
}

// WriteTextfile writes all metrics to the configured textfile atomically.
func (m *Metrics) WriteTextfile() error {
	if !m.Enabled() || m.config.Textfile == "" {
		return nil
	}
	m.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(m.config.Textfile, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
