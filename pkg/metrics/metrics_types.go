package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Artifact Load Metrics
	LoadsTotal          *prometheus.CounterVec
	LoadDuration        *prometheus.HistogramVec
	ProgramTablesTotal  prometheus.Gauge
	ProgramActionsTotal prometheus.Gauge
	ProgramGraphsTotal  prometheus.Gauge
	TopologyHostsTotal  prometheus.Gauge

	// Query Metrics
	QueriesTotal            *prometheus.CounterVec
	QueryDuration           *prometheus.HistogramVec
	QueryPathsFound         *prometheus.HistogramVec
	UnreachableTargetsTotal prometheus.Counter
	SlowQueries             *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
// Every engine instance carries its own registry; there is no process-wide
// default.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initLoadMetrics()
	r.initQueryMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
