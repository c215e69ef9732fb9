package authz

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Decision stages
const (
	StageAuthenticate = "authenticate"
	StageRole         = "role"
	StageOwnership    = "ownership"
)

// Metrics counts authorization outcomes
type Metrics struct {
	DecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the authorization metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authz_decisions_total",
				Help: "Total number of authorization decisions by stage and outcome",
			},
			[]string{"operation", "stage", "outcome"},
		),
	}

	if registry != nil {
		registry.MustRegister(m.DecisionsTotal)
	}

	return m
}

func (m *Metrics) observe(op Operation, stage, outcome string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(string(op), stage, outcome).Inc()
}
