// Package metrics counts dispatch outcomes with Prometheus collectors. The
// CLI has no server to scrape, so it writes them in the text exposition
// format when the session ends.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/monitor"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	Transitions *prometheus.CounterVec // Status transitions per unit kind
	Blocked     *prometheus.CounterVec // Reason changes of waiting units
	Rounds      *prometheus.GaugeVec   // Highest round seen per unit kind

	gatherer prometheus.Gatherer
}

var _ monitor.Observer = (*Metrics)(nil)

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.NewRegistry())
}

// NewWithRegisterer registers the collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dxe_unit_transitions_total",
		Help: "Dispatch unit status transitions",
	}, []string{"kind", "status"})

	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dxe_unit_blocked_total",
		Help: "Times a waiting unit reported a new blocking reason",
	}, []string{"kind"})

	rounds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dxe_dispatch_rounds",
		Help: "Highest dispatch round observed",
	}, []string{"kind"})

	reg.MustRegister(transitions)
	reg.MustRegister(blocked)
	reg.MustRegister(rounds)

	g, _ := reg.(prometheus.Gatherer)
	return &Metrics{Transitions: transitions, Blocked: blocked, Rounds: rounds, gatherer: g}
}

// Observe implements monitor.Observer.
func (m *Metrics) Observe(_ context.Context, ev monitor.Event) {
	kind := string(ev.Unit.Kind)
	if ev.Status == dispatchstore.StatusPending && ev.Reason != "" {
		m.Blocked.WithLabelValues(kind).Inc()
	} else {
		m.Transitions.WithLabelValues(kind, ev.Status.String()).Inc()
	}
	g := m.Rounds.WithLabelValues(kind)
	if cur := currentValue(g); float64(ev.Round) > cur {
		g.Set(float64(ev.Round))
	}
}

// WriteFile writes every collected metric to path.
func (m *Metrics) WriteFile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics registerer cannot be gathered")
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Gatherer returns the registry the collectors live in, if it can be
// gathered.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}
