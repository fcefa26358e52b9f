// Package metrics exposes Prometheus instrumentation for pipeline runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/content-engine/internal/domain"
)

const namespace = "content_engine"

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	stageDuration  *prometheus.HistogramVec
	itemsDelivered prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs by type and terminal status.",
		}, []string{"type", "status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of completed pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		itemsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_delivered_total",
			Help:      "Items accepted by the downstream ingest endpoint.",
		}),
	}

	registry.MustRegister(m.runsTotal, m.runDuration, m.stageDuration, m.itemsDelivered)

	return m
}

// ObserveRun records a completed run and its stage timings.
func (m *Metrics) ObserveRun(run *domain.Run) {
	if m == nil || run == nil {
		return
	}

	m.runsTotal.WithLabelValues(string(run.PipelineType), string(run.Status)).Inc()
	m.runDuration.Observe(run.Duration.Seconds())
	m.itemsDelivered.Add(float64(run.Delivered))

	for i := range run.Stages {
		stage := &run.Stages[i]
		if stage.FinishedAt.IsZero() {
			continue
		}
		m.stageDuration.WithLabelValues(string(stage.Stage)).Observe(stage.FinishedAt.Sub(stage.StartedAt).Seconds())
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry so tests can gather.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
