package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration not initialized")
	}
	if r.LoadsTotal == nil {
		t.Error("LoadsTotal not initialized")
	}
	if r.QueriesTotal == nil {
		t.Error("QueriesTotal not initialized")
	}
	if r.UnreachableTargetsTotal == nil {
		t.Error("UnreachableTargetsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRegistryIsolation(t *testing.T) {
	// Two registries must track independently: every engine gets its own.
	r1 := NewRegistry()
	r2 := NewRegistry()

	r1.RecordQuery("list_tables", "success", time.Millisecond)

	counter, err := r2.QueriesTotal.GetMetricWithLabelValues("list_tables", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 0 {
		t.Errorf("Second registry counter = %v, want 0", metric.Counter.GetValue())
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	// Record some requests
	r.RecordHTTPRequest("GET", "/api/tables", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/hosts", "200", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/tables", "404", 50*time.Millisecond)

	// Verify counter was incremented
	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/tables", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordLoad(t *testing.T) {
	r := NewRegistry()

	r.RecordLoad("success", 120*time.Millisecond)
	r.RecordLoad("success", 90*time.Millisecond)
	r.RecordLoad("error", 10*time.Millisecond)

	successCounter, err := r.LoadsTotal.GetMetricWithLabelValues("success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := successCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Success counter = %v, want 2", metric.Counter.GetValue())
	}

	errorCounter, err := r.LoadsTotal.GetMetricWithLabelValues("error")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	if err := errorCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Error counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordQuery(t *testing.T) {
	r := NewRegistry()

	r.RecordQuery("path_constraints", "success", 50*time.Millisecond)

	counter, err := r.QueriesTotal.GetMetricWithLabelValues("path_constraints", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Query counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordQuerySlow(t *testing.T) {
	r := NewRegistry()

	r.RecordQuery("parser_paths", "success", 1500*time.Millisecond)
	r.RecordQuery("parser_paths", "success", 10*time.Millisecond)

	slow, err := r.SlowQueries.GetMetricWithLabelValues("parser_paths")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := slow.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Slow query counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordPathsFound(t *testing.T) {
	r := NewRegistry()

	r.RecordPathsFound("path_constraints", 3, false)
	r.RecordPathsFound("path_constraints", 0, true)
	r.RecordPathsFound("parser_paths", 5, false)

	var metric dto.Metric
	if err := r.UnreachableTargetsTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Unreachable counter = %v, want 1", metric.Counter.GetValue())
	}

	hist, err := r.QueryPathsFound.GetMetricWithLabelValues("path_constraints")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}

	if err := hist.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Paths found sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	if sum := metric.Histogram.GetSampleSum(); sum != 3 {
		t.Errorf("Paths found sample sum = %v, want 3", sum)
	}
}

func TestSetProgramStats(t *testing.T) {
	r := NewRegistry()

	r.SetProgramStats(4, 7, 2, 3)

	tests := []struct {
		name     string
		gauge    prometheus.Gauge
		expected float64
	}{
		{"ProgramTablesTotal", r.ProgramTablesTotal, 4},
		{"ProgramActionsTotal", r.ProgramActionsTotal, 7},
		{"ProgramGraphsTotal", r.ProgramGraphsTotal, 2},
		{"TopologyHostsTotal", r.TopologyHostsTotal, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metric dto.Metric
			if err := tt.gauge.Write(&metric); err != nil {
				t.Fatalf("Failed to write metric: %v", err)
			}

			if metric.Gauge.GetValue() != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, metric.Gauge.GetValue(), tt.expected)
			}
		})
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()

	// Set system metrics
	r.UptimeSeconds.Set(3600)
	r.GoRoutines.Set(50)
	r.MemoryAllocBytes.Set(1024 * 1024 * 100) // 100 MB
	r.MemorySysBytes.Set(1024 * 1024 * 200)   // 200 MB

	tests := []struct {
		name     string
		gauge    prometheus.Gauge
		expected float64
	}{
		{"UptimeSeconds", r.UptimeSeconds, 3600},
		{"GoRoutines", r.GoRoutines, 50},
		{"MemoryAllocBytes", r.MemoryAllocBytes, 1024 * 1024 * 100},
		{"MemorySysBytes", r.MemorySysBytes, 1024 * 1024 * 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metric dto.Metric
			if err := tt.gauge.Write(&metric); err != nil {
				t.Fatalf("Failed to write metric: %v", err)
			}

			if metric.Gauge.GetValue() != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, metric.Gauge.GetValue(), tt.expected)
			}
		})
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	// Verify we can gather metrics
	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	if len(metrics) == 0 {
		t.Error("No metrics registered")
	}

	// Verify some expected metrics exist
	expectedMetrics := []string{
		"p4lens_program_tables_total",
		"p4lens_unreachable_targets_total",
		"p4lens_uptime_seconds",
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func TestHistogramMetrics(t *testing.T) {
	r := NewRegistry()

	// Record HTTP request durations (method, path, status)
	r.HTTPRequestDuration.WithLabelValues("GET", "/api/tables", "200").Observe(0.1)
	r.HTTPRequestDuration.WithLabelValues("GET", "/api/tables", "200").Observe(0.2)
	r.HTTPRequestDuration.WithLabelValues("GET", "/api/tables", "200").Observe(0.15)

	histogram, err := r.HTTPRequestDuration.GetMetricWithLabelValues("GET", "/api/tables", "200")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}

	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("Sample count = %v, want 3", metric.Histogram.GetSampleCount())
	}

	// Sum should be approximately 0.45 (0.1 + 0.2 + 0.15)
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.44 || sum > 0.46 {
		t.Errorf("Sample sum = %v, want ~0.45", sum)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	// Simulate concurrent queries
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordQuery("get_table", "success", 10*time.Millisecond)
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify counter
	counter, err := r.QueriesTotal.GetMetricWithLabelValues("get_table", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	// Should have 1000 total queries (10 goroutines * 100 queries)
	if metric.Counter.GetValue() != 1000 {
		t.Errorf("Counter = %v, want 1000", metric.Counter.GetValue())
	}
}

func TestMetricLabels(t *testing.T) {
	r := NewRegistry()

	// Metrics with different labels must be tracked separately
	r.RecordQuery("list_tables", "success", 10*time.Millisecond)
	r.RecordQuery("path_constraints", "success", 20*time.Millisecond)
	r.RecordQuery("list_tables", "error", 15*time.Millisecond)

	var metric dto.Metric

	listOK, _ := r.QueriesTotal.GetMetricWithLabelValues("list_tables", "success")
	listOK.Write(&metric)
	if metric.Counter.GetValue() != 1 {
		t.Errorf("list_tables success counter = %v, want 1", metric.Counter.GetValue())
	}

	pcOK, _ := r.QueriesTotal.GetMetricWithLabelValues("path_constraints", "success")
	pcOK.Write(&metric)
	if metric.Counter.GetValue() != 1 {
		t.Errorf("path_constraints success counter = %v, want 1", metric.Counter.GetValue())
	}

	listErr, _ := r.QueriesTotal.GetMetricWithLabelValues("list_tables", "error")
	listErr.Write(&metric)
	if metric.Counter.GetValue() != 1 {
		t.Errorf("list_tables error counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	// Verify all metrics have the p4lens_ prefix
	for _, m := range metrics {
		name := m.GetName()
		if !strings.HasPrefix(name, "p4lens_") {
			t.Errorf("Metric %s does not have p4lens_ prefix", name)
		}
	}
}

func BenchmarkRecordHTTPRequest(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordHTTPRequest("GET", "/api/tables", "200", 10*time.Millisecond)
	}
}

func BenchmarkRecordQuery(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordQuery("get_table", "success", 5*time.Millisecond)
	}
}
