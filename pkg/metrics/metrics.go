package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordLoad records an artifact bundle load attempt
func (r *Registry) RecordLoad(status string, duration time.Duration) {
	r.LoadsTotal.WithLabelValues(status).Inc()
	r.LoadDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// SetProgramStats publishes the shape of the loaded program model
func (r *Registry) SetProgramStats(tables, actions, graphs, hosts int) {
	r.ProgramTablesTotal.Set(float64(tables))
	r.ProgramActionsTotal.Set(float64(actions))
	r.ProgramGraphsTotal.Set(float64(graphs))
	r.TopologyHostsTotal.Set(float64(hosts))
}

// RecordQuery records a query execution against the engine facade
func (r *Registry) RecordQuery(operation, status string, duration time.Duration) {
	r.QueriesTotal.WithLabelValues(operation, status).Inc()
	r.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if duration > time.Second {
		r.SlowQueries.WithLabelValues(operation).Inc()
	}
}

// RecordPathsFound records how many paths a path-enumerating query produced.
// A constraint query whose target turned out to be unreachable also bumps
// the unreachable counter.
func (r *Registry) RecordPathsFound(operation string, paths int, unreachable bool) {
	r.QueryPathsFound.WithLabelValues(operation).Observe(float64(paths))
	if unreachable {
		r.UnreachableTargetsTotal.Inc()
	}
}
