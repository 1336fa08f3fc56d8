package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by dialog hooks.
type Metrics struct {
	registry *prometheus.Registry

	Messages    *prometheus.CounterVec
	Stages      *prometheus.CounterVec
	Requests    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	InFlight    prometheus.Gauge
	Settlements *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a private registry
// that also carries the Go and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_messages_total",
				Help: "Messages appended to the transcript",
			},
			[]string{"role", "kind"},
		),
		Stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_stage_transitions_total",
				Help: "Pending interaction stage transitions",
			},
			[]string{"from", "to"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_answer_service_requests_total",
				Help: "Answer Service calls by outcome",
			},
			[]string{"op", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parley_answer_service_request_duration_seconds",
				Help:    "Duration of Answer Service calls",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"op"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parley_answer_service_requests_in_flight",
			Help: "Answer Service calls currently in flight",
		}),
		Settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_actions_settled_total",
				Help: "Dialog actions that settled",
			},
			[]string{"action"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.Messages, m.Stages, m.Requests, m.Duration, m.InFlight, m.Settlements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMessage: func(_ context.Context, e *domain.MessageEvent) {
			m.Messages.WithLabelValues(string(e.Message.Role), string(e.Message.Kind)).Inc()
		},
		OnStageChange: func(_ context.Context, e *domain.StageEvent) {
			m.Stages.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnRequestStart: func(_ context.Context, _ *domain.RequestEvent) {
			m.InFlight.Inc()
		},
		OnRequestEnd: func(_ context.Context, e *domain.RequestEvent) {
			m.InFlight.Dec()
			m.Requests.WithLabelValues(e.Op, e.Outcome).Inc()
			m.Duration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
		},
		OnSettle: func(_ context.Context, e *domain.SettleEvent) {
			m.Settlements.WithLabelValues(e.Action).Inc()
		},
	}
}
