package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unifecaf/triagebot/pkg/domain"
)

const namespace = "triagebot"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Turns             *prometheus.CounterVec
	TurnDuration      prometheus.Histogram
	Sessions          *prometheus.CounterVec
	Completions       *prometheus.CounterVec
	CompletionLatency prometheus.Histogram
	Exports           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed messages, by step reached.",
		}, []string{"step", "terminated"}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent computing one turn.",
			Buckets:   prometheus.DefBuckets,
		}),
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions created or discarded, by origin.",
		}, []string{"origin"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion requests, by outcome and fallback category.",
		}, []string{"outcome", "category"}),
		CompletionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion requests.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_exports_total",
			Help:      "Audit exports, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Turns, m.TurnDuration, m.Sessions, m.Completions, m.CompletionLatency, m.Exports)
	return m
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(e.To.String(), boolLabel(e.Terminated)).Inc()
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
		OnSession: func(_ context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues(string(e.Origin)).Inc()
		},
		OnCompletion: func(_ context.Context, e *domain.CompletionEvent) {
			outcome := "ok"
			if e.Fallback {
				outcome = "fallback"
			}
			m.Completions.WithLabelValues(outcome, e.Category).Inc()
			m.CompletionLatency.Observe(e.Duration.Seconds())
		},
		OnExport: func(_ context.Context, e *domain.ExportEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Exports.WithLabelValues(outcome).Inc()
		},
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
