package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the dedicated registry exposed on the metrics endpoint.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for request times ranging from
	// milliseconds (validation failures) to multiple seconds (PDF compilation)
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	DocumentBuilds = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyleave_document_builds_total",
			Help: "Total number of document build requests",
		},
		[]string{"status"}, // "success", "validation_failed", "render_failed"
	)

	DocumentBuildsByActivity = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyleave_document_builds_by_activity_total",
			Help: "Successful document builds per activity type",
		},
		[]string{"activity_type"},
	)

	// Compiler Client Metrics
	RenderDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_client_operation_duration_seconds",
			Help:    "External compiler invocation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"status"},
	)

	RenderTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_client_operation_total",
			Help: "Total number of external compiler invocations",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// Init registers the standard process and Go runtime collectors,
// labelled with the service name.
func Init(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service_name": serviceName}, Registry)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
