// Package metrics wraps the Prometheus collectors the composition runtime
// reports to: registrations, namespace fetches, initialization batches and
// instance lifecycle transitions.
//
// A nil *Collector is valid and records nothing, so packages can take one
// optionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the runtime's collectors and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	registrations *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	batchSize     prometheus.Histogram
	instances     *prometheus.CounterVec
	live          prometheus.Gauge
}

// NewCollector creates a collector whose metrics use the given namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "compositor"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Component registrations by result (ok, invalid_name, duplicate, conflict, invalid_source)",
		},
		[]string{"result"},
	)

	c.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "fetches_total",
			Help:      "Component source fetches by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	c.fetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch a component source",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"namespace"},
	)

	c.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "batch_size",
			Help:      "Instances initialized per scheduler batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	c.instances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "component",
			Name:      "transitions_total",
			Help:      "Instance lifecycle transitions by tag and phase (scheduled, initialized, failed, cancelled, destroyed)",
		},
		[]string{"tag", "phase"},
	)

	c.live = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "component",
			Name:      "live_instances",
			Help:      "Instances initialized and not yet destroyed",
		},
	)

	c.registry.MustRegister(
		c.registrations,
		c.fetches,
		c.fetchLatency,
		c.batchSize,
		c.instances,
		c.live,
	)
	return c
}

// Registry returns the Prometheus registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRegistration counts a registration attempt.
func (c *Collector) RecordRegistration(result string) {
	if c == nil {
		return
	}
	c.registrations.WithLabelValues(result).Inc()
}

// RecordFetch counts a fetch and observes its latency.
func (c *Collector) RecordFetch(namespace string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.fetches.WithLabelValues(namespace, result).Inc()
	c.fetchLatency.WithLabelValues(namespace).Observe(duration.Seconds())
}

// RecordBatch observes the size of a processed scheduler batch.
func (c *Collector) RecordBatch(size int) {
	if c == nil {
		return
	}
	c.batchSize.Observe(float64(size))
}

// RecordTransition counts an instance lifecycle transition.
func (c *Collector) RecordTransition(tag, phase string) {
	if c == nil {
		return
	}
	c.instances.WithLabelValues(tag, phase).Inc()
	switch phase {
	case "initialized":
		c.live.Inc()
	case "destroyed":
		c.live.Dec()
	}
}
