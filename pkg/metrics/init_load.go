package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLoadMetrics() {
	r.LoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "p4lens_loads_total",
			Help: "Total number of artifact bundle load attempts",
		},
		[]string{"status"},
	)

	r.LoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "p4lens_load_duration_seconds",
			Help:    "Artifact bundle load duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"status"},
	)

	r.ProgramTablesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_program_tables_total",
			Help: "Number of match-action tables in the loaded program",
		},
	)

	r.ProgramActionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_program_actions_total",
			Help: "Number of actions in the loaded program",
		},
	)

	r.ProgramGraphsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_program_graphs_total",
			Help: "Number of control graphs in the loaded program",
		},
	)

	r.TopologyHostsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_topology_hosts_total",
			Help: "Number of hosts in the loaded topology",
		},
	)
}
