// Package metrics exposes traversal activity as Prometheus metrics.
// Metrics are fed by domain.LifecycleHooks, so the engine itself never
// imports Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carepath"

// Metrics holds the collectors of one process.
type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	nodeVisits  *prometheus.CounterVec
	depth       *prometheus.HistogramVec
	outcomes    *prometheus.CounterVec
	sessions    prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Traversal operations by graph and type, including rejected ones.",
			},
			[]string{"graph_id", "type"},
		),
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Times a node became current through Advance.",
			},
			[]string{"graph_id", "node_id"},
		),
		depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "path_depth",
				Help:      "Path length after each advance.",
				Buckets:   prometheus.LinearBuckets(1, 2, 10),
			},
			[]string{"graph_id"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Terminal nodes reached.",
			},
			[]string{"graph_id", "node_id"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the server.",
		}),
	}
	m.registry.MustRegister(m.transitions, m.nodeVisits, m.depth, m.outcomes, m.sessions)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording every event. terminal reports
// whether a node id is an outcome; it may be nil.
func (m *Metrics) Hooks(terminal func(nodeID string) bool) domain.LifecycleHooks {
	count := func(_ context.Context, e *domain.TransitionEvent) {
		m.transitions.WithLabelValues(e.GraphID, string(e.Type)).Inc()
	}
	return domain.LifecycleHooks{
		OnAdvance: func(ctx context.Context, e *domain.TransitionEvent) {
			count(ctx, e)
			m.nodeVisits.WithLabelValues(e.GraphID, e.ToNode).Inc()
			m.depth.WithLabelValues(e.GraphID).Observe(float64(e.Depth))
			if terminal != nil && terminal(e.ToNode) {
				m.outcomes.WithLabelValues(e.GraphID, e.ToNode).Inc()
			}
		},
		OnBack:     count,
		OnJump:     count,
		OnReset:    count,
		OnRejected: count,
	}
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() { m.sessions.Dec() }
