// Package metrics provides Prometheus metrics for the salary explorer service.
package metrics

import (
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset metrics
	datasetRecords      prometheus.Gauge
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram
	datasetLastLoadUnix prometheus.Gauge

	// Query metrics
	filterQueries      prometheus.Counter
	filterEmptyResults prometheus.Counter
	filterMatchedRows  prometheus.Histogram
	viewLatency        *prometheus.HistogramVec

	// Estimate metrics
	estimates          *prometheus.CounterVec
	estimateSampleSize prometheus.Histogram

	// Output metrics
	exports        *prometheus.CounterVec
	exportRows     prometheus.Histogram
	chartsRendered *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// DefaultLatencyBuckets are the latency histogram buckets in milliseconds.
var DefaultLatencyBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager on a fresh registry with opts.
// Call it at startup, before GetRegistry is handed to an HTTP handler.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(slices.Clone(opts), WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salaryexplorer",
		subsystem:        "dashboard",
		histogramBuckets: DefaultLatencyBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	sampleBuckets := []float64{1, 2, 3, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

	// Dataset
	m.datasetRecords = auto.NewGauge(m.gaugeOpts(
		"dataset_records", "Number of records in the loaded dataset"))
	m.datasetLoads = auto.NewCounterVec(m.counterOpts(
		"dataset_loads_total", "Dataset load attempts by outcome"), []string{"outcome"})
	m.datasetLoadDuration = auto.NewHistogram(m.histogramOpts(
		"dataset_load_duration_milliseconds", "Dataset load duration in milliseconds", m.histogramBuckets))
	m.datasetLastLoadUnix = auto.NewGauge(m.gaugeOpts(
		"dataset_last_load_unix", "Unix timestamp of the last successful dataset load"))

	// Queries
	m.filterQueries = auto.NewCounter(m.counterOpts(
		"filter_queries_total", "Total number of filter evaluations"))
	m.filterEmptyResults = auto.NewCounter(m.counterOpts(
		"filter_empty_results_total", "Filter evaluations that matched no records"))
	m.filterMatchedRows = auto.NewHistogram(m.histogramOpts(
		"filter_matched_records", "Number of records matched per filter evaluation", sampleBuckets))
	m.viewLatency = auto.NewHistogramVec(m.histogramOpts(
		"view_latency_milliseconds", "View computation latency in milliseconds", m.histogramBuckets),
		[]string{"view"})

	// Estimates
	m.estimates = auto.NewCounterVec(m.counterOpts(
		"estimates_total", "Salary estimates by outcome (exact, relaxed, none)"), []string{"outcome"})
	m.estimateSampleSize = auto.NewHistogram(m.histogramOpts(
		"estimate_sample_size", "Number of records behind each estimate", sampleBuckets))

	// Output
	m.exports = auto.NewCounterVec(m.counterOpts(
		"exports_total", "Filtered data exports by format"), []string{"format"})
	m.exportRows = auto.NewHistogram(m.histogramOpts(
		"export_rows", "Rows written per export", sampleBuckets))
	m.chartsRendered = auto.NewCounterVec(m.counterOpts(
		"charts_rendered_total", "Charts rendered by name"), []string{"chart"})

	// HTTP
	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.rateLimited = auto.NewCounterVec(m.counterOpts(
		"http_rate_limited_total", "Requests rejected by the rate limiter"), []string{"endpoint"})

	// Errors
	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts(
		"errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"})

	// System
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Milliseconds converts a duration to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Dataset Metrics Functions.

// RecordDatasetLoad records a load attempt. outcome is "success" or an error kind.
func RecordDatasetLoad(outcome string, latencyMs float64) {
	globalManager.datasetLoads.WithLabelValues(outcome).Inc()
	globalManager.datasetLoadDuration.Observe(latencyMs)
	if outcome == "success" {
		globalManager.datasetLastLoadUnix.Set(float64(time.Now().Unix()))
	}
}

// UpdateDatasetRecords sets the number of loaded records.
func UpdateDatasetRecords(count int) {
	globalManager.datasetRecords.Set(float64(count))
}

// Query Metrics Functions.

// RecordFilterQuery records a filter evaluation and its match count.
func RecordFilterQuery(matched int) {
	globalManager.filterQueries.Inc()
	globalManager.filterMatchedRows.Observe(float64(matched))
	if matched == 0 {
		globalManager.filterEmptyResults.Inc()
	}
}

// RecordViewLatency records how long a view took to compute.
func RecordViewLatency(view string, latencyMs float64) {
	globalManager.viewLatency.WithLabelValues(view).Observe(latencyMs)
}

// Estimate Metrics Functions.

// RecordEstimate records an estimate outcome and the sample size behind it.
func RecordEstimate(outcome string, sampleSize int) {
	globalManager.estimates.WithLabelValues(outcome).Inc()
	if sampleSize > 0 {
		globalManager.estimateSampleSize.Observe(float64(sampleSize))
	}
}

// Output Metrics Functions.

// RecordExport records an export in the given format.
func RecordExport(format string, rows int) {
	globalManager.exports.WithLabelValues(format).Inc()
	globalManager.exportRows.Observe(float64(rows))
}

// RecordChartRendered records a rendered chart.
func RecordChartRendered(chart string) {
	globalManager.chartsRendered.WithLabelValues(chart).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited increments the rate limited counter for endpoint.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Snapshot gathers the custom registry and returns metric family names with
// their sample counts, for diagnostics.
func Snapshot() (map[string]int, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	out := make(map[string]int, len(families))
	for _, f := range families {
		out[f.GetName()] = len(f.GetMetric())
	}
	return out, nil
}
