package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "p4lens_queries_total",
			Help: "Total number of queries executed against the facade",
		},
		[]string{"operation", "status"},
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "p4lens_query_duration_seconds",
			Help:    "Query execution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	r.QueryPathsFound = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "p4lens_query_paths_found",
			Help:    "Number of paths produced per path-enumerating query",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 1000},
		},
		[]string{"operation"},
	)

	r.UnreachableTargetsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "p4lens_unreachable_targets_total",
			Help: "Total number of constraint queries whose target had no path from the root",
		},
	)

	r.SlowQueries = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "p4lens_slow_queries_total",
			Help: "Total number of slow queries (>1s)",
		},
		[]string{"operation"},
	)
}
