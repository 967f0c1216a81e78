package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionLister is the subset of a session store needed to count sessions.
type SessionLister interface {
	List(ctx context.Context) ([]string, error)
}

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg creates a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toyrobot_commands_total",
				Help: "Total number of robot commands by outcome",
			},
			[]string{"command", "outcome"},
		),
	}
	reg.MustRegister(m.commands)
	return m
}

// Hooks returns lifecycle hooks that count commands and log them at debug level.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(string(e.Result.Command), string(e.Result.Outcome)).Inc()
			if logger != nil {
				logger.DebugContext(ctx, "command",
					"session_id", e.SessionID,
					"command", string(e.Result.Command),
					"outcome", string(e.Result.Outcome),
				)
			}
		},
	}
}

// Commands returns the counter for a command and outcome pair.
func (m *Metrics) Commands(cmd domain.CommandType, outcome domain.Outcome) prometheus.Counter {
	return m.commands.WithLabelValues(string(cmd), string(outcome))
}

// TrackSessions registers toyrobot_sessions_active, evaluated on every scrape.
func (m *Metrics) TrackSessions(lister SessionLister, timeout time.Duration) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "toyrobot_sessions_active",
			Help: "Number of stored robot sessions",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			ids, err := lister.List(ctx)
			if err != nil {
				return -1
			}
			return float64(len(ids))
		},
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
