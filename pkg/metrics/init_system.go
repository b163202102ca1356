package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	r.UptimeSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_uptime_seconds",
			Help: "Seconds since the analysis server started",
		},
	)

	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_goroutines",
			Help: "Current goroutine count",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_memory_alloc_bytes",
			Help: "Heap bytes currently allocated",
		},
	)

	r.MemorySysBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "p4lens_memory_sys_bytes",
			Help: "Total memory obtained from the OS in bytes",
		},
	)
}
