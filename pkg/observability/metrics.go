package observability

import (
	"context"
	"errors"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the turtle collectors.
type Metrics struct {
	Commands *prometheus.CounterVec
	Persists *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turtle_commands_total",
				Help: "Submitted lines by command kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turtle_persist_total",
				Help: "Save and load operations by command and result",
			},
			[]string{"op", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Persists)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandApplied: func(_ context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(e.Kind.String(), "applied").Inc()
		},
		OnCommandRejected: func(_ context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(rejectedKind(e), "rejected").Inc()
		},
		OnPersist: func(_ context.Context, e *domain.PersistEvent) {
			m.Persists.WithLabelValues(e.Op.String(), persistResult(e)).Inc()
		},
	}
}

func rejectedKind(e *domain.CommandEvent) string {
	switch {
	case errors.Is(e.Err, domain.ErrEmptyInput):
		return "empty"
	case errors.Is(e.Err, domain.ErrUnknownCommand):
		return "unknown"
	}
	return e.Kind.String()
}

func persistResult(e *domain.PersistEvent) string {
	switch {
	case e.Cancelled:
		return "cancelled"
	case e.Err != nil:
		return "error"
	}
	return "ok"
}
