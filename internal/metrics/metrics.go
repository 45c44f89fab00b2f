// Package metrics instruments card renders, syncs and push clients with Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace of every metric.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the render duration buckets, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) { m.runtime = true }
}

// Manager owns a private registry and the service metrics.
type Manager struct {
	namespace string
	buckets   []float64
	runtime   bool

	registry *prometheus.Registry

	renders   *prometheus.CounterVec
	renderDur *prometheus.HistogramVec
	records   *prometheus.GaugeVec
	syncs     *prometheus.CounterVec
	entities  prometheus.Gauge
	clients   prometheus.Gauge
}

// NewManager creates and registers the metrics.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		namespace: config.MetricsNamespace,
		buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.renders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      config.MetricRenders,
		Help:      "Card renders by card and type.",
	}, []string{config.LabelCard, config.LabelType})
	m.renderDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      config.MetricRenderSeconds,
		Help:      "Time spent running the projection pipeline.",
		Buckets:   m.buckets,
	}, []string{config.LabelType})
	m.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      config.MetricRecords,
		Help:      "Records shown by the last render of each card.",
	}, []string{config.LabelCard})
	m.syncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      config.MetricSyncs,
		Help:      "Synchronizations by result.",
	}, []string{config.LabelResult})
	m.entities = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      config.MetricEntities,
		Help:      "Entities in the current snapshot.",
	})
	m.clients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      config.MetricWSClients,
		Help:      "Connected WebSocket clients.",
	})

	cs := []prometheus.Collector{m.renders, m.renderDur, m.records, m.syncs, m.entities, m.clients}
	if m.runtime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrMetricsRegister, err)
		}
	}

	// Both results exist from the start so rate() works before the first failure.
	m.syncs.WithLabelValues(config.ResultOK)
	m.syncs.WithLabelValues(config.ResultError)
	return m, nil
}

// ObserveRender implements widget.Recorder.
func (m *Manager) ObserveRender(cardID, cardType string, d time.Duration, records int) {
	m.renders.WithLabelValues(cardID, cardType).Inc()
	m.renderDur.WithLabelValues(cardType).Observe(d.Seconds())
	m.records.WithLabelValues(cardID).Set(float64(records))
}

// RecordSync counts a synchronization and, on success, the snapshot size.
func (m *Manager) RecordSync(err error, entities int) {
	if err != nil {
		m.syncs.WithLabelValues(config.ResultError).Inc()
		return
	}
	m.syncs.WithLabelValues(config.ResultOK).Inc()
	m.entities.Set(float64(entities))
}

// SetClients sets the connected client gauge.
func (m *Manager) SetClients(n int) {
	m.clients.Set(float64(n))
}

// Registry returns the private registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
