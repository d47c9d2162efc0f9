package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mtaha2509/logging-platform/internal/infra/config"
)

// Provider holds the alert sweep metrics. HTTP request metrics live in the
// middleware package so the two never register colliding collectors.
type Provider struct {
	sweepCounter   prometheus.Counter
	triggerCounter prometheus.Counter
}

// NewProvider registers the sweep counters with the given registerer.
func NewProvider(reg prometheus.Registerer) *Provider {
	factory := promauto.With(reg)

	sweeps := factory.NewCounter(prometheus.CounterOpts{
		Namespace: "logpf",
		Name:      "alert_sweeps_total",
		Help:      "Total number of alert evaluation sweeps",
	})

	triggers := factory.NewCounter(prometheus.CounterOpts{
		Namespace: "logpf",
		Name:      "alert_triggers_total",
		Help:      "Total number of alert triggers recorded",
	})

	return &Provider{
		sweepCounter:   sweeps,
		triggerCounter: triggers,
	}
}

// Attach configures telemetry collectors on the default registry and returns a
// provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return NewProvider(prometheus.DefaultRegisterer), nil
}

// SweepCounter exposes the alert sweep metric.
func (p *Provider) SweepCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.sweepCounter
}

// TriggerCounter exposes the alert trigger metric.
func (p *Provider) TriggerCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.triggerCounter
}
