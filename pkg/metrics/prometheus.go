// Package metrics provides Prometheus metrics for the tsuri ranking and
// search service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Manager manages all Prometheus metrics for the tsuri service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking
	rankRequests *prometheus.CounterVec
	rankLatency  prometheus.Histogram
	rankResults  prometheus.Histogram

	// Search
	searchQueries prometheus.Counter
	searchLatency prometheus.Histogram
	searchMatches prometheus.Histogram

	emptyResults       *prometheus.CounterVec
	geolocationResults *prometheus.CounterVec

	// Catalog
	catalogItems        *prometheus.GaugeVec
	catalogLoadDuration prometheus.Histogram
	catalogLoads        *prometheus.CounterVec
	catalogLastLoadUnix prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry, which GetRegistry then returns. Call it at startup before any
// handler captures GetRegistry.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	opts = append(opts[:len(opts):len(opts)], WithPrometheusRegistry(reg))
	globalManager = NewManager(opts...)
	customRegistry = reg
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tsuri",
		subsystem:        "service",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string { return m.metricPrefix + n }

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
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	reg := m.registry
	if !m.enabled {
		// Metrics still exist so calls are safe, but nothing is exported.
		reg = prometheus.NewRegistry()
	}
	auto := promauto.With(reg)
	sizeBuckets := []float64{0, 1, 2, 3, 5, 8, 10, 15}

	m.rankRequests = auto.NewCounterVec(
		m.counterOpts("rank_requests_total", "Ranking requests by tab and mode"),
		[]string{"tab", "mode"},
	)
	m.rankLatency = auto.NewHistogram(
		m.histogramOpts("rank_latency_milliseconds", "Time to filter, score and order spots", m.histogramBuckets),
	)
	m.rankResults = auto.NewHistogram(
		m.histogramOpts("rank_results", "Number of spots in a ranked result", sizeBuckets),
	)

	m.searchQueries = auto.NewCounter(
		m.counterOpts("search_queries_total", "Settled search queries"),
	)
	m.searchLatency = auto.NewHistogram(
		m.histogramOpts("search_latency_milliseconds", "Time to match and group a query", m.histogramBuckets),
	)
	m.searchMatches = auto.NewHistogram(
		m.histogramOpts("search_matches", "Number of items in a grouped search result", sizeBuckets),
	)

	m.emptyResults = auto.NewCounterVec(
		m.counterOpts("empty_results_total", "Requests that produced no results"),
		[]string{"kind"},
	)
	m.geolocationResults = auto.NewCounterVec(
		m.counterOpts("geolocation_outcomes_total", "Location requests by outcome"),
		[]string{"status"},
	)

	m.catalogItems = auto.NewGaugeVec(
		m.gaugeOpts("catalog_items", "Records in the published catalog by kind"),
		[]string{"kind"},
	)
	m.catalogLoadDuration = auto.NewHistogram(
		m.histogramOpts("catalog_load_duration_milliseconds", "Catalog decode, validate and publish time", m.histogramBuckets),
	)
	m.catalogLoads = auto.NewCounterVec(
		m.counterOpts("catalog_loads_total", "Catalog load attempts by result"),
		[]string{"result"},
	)
	m.catalogLastLoadUnix = auto.NewGauge(
		m.gaugeOpts("catalog_last_load_unix", "Unix timestamp of the last published catalog"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordRank records one ranking request.
func (m *Manager) RecordRank(tab, mode string, results int, latencyMs float64) {
	m.rankRequests.WithLabelValues(tab, mode).Inc()
	m.rankLatency.Observe(latencyMs)
	m.rankResults.Observe(float64(results))
	if results == 0 {
		m.emptyResults.WithLabelValues("rank").Inc()
	}
}

// RecordSearch records one settled search.
func (m *Manager) RecordSearch(matches int, latencyMs float64) {
	m.searchQueries.Inc()
	m.searchLatency.Observe(latencyMs)
	m.searchMatches.Observe(float64(matches))
	if matches == 0 {
		m.emptyResults.WithLabelValues("search").Inc()
	}
}

// CollectSystem samples runtime memory, goroutine and GC statistics.
func (m *Manager) CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		m.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemCollector samples system metrics every refresh interval until
// ctx is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	m.CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CollectSystem()
		}
	}
}

// Package-level helpers write to the global manager.

// RecordRank records one ranking request.
func RecordRank(tab, mode string, results int, latencyMs float64) {
	globalManager.RecordRank(tab, mode, results, latencyMs)
}

// RecordSearch records one settled search.
func RecordSearch(matches int, latencyMs float64) {
	globalManager.RecordSearch(matches, latencyMs)
}

// RecordGeolocation counts a location outcome (located, denied, timeout, unavailable).
func RecordGeolocation(status string) {
	globalManager.geolocationResults.WithLabelValues(status).Inc()
}

// UpdateCatalogItems sets the record count of one catalog kind.
func UpdateCatalogItems(kind string, count int) {
	globalManager.catalogItems.WithLabelValues(kind).Set(float64(count))
}

// RecordCatalogLoad records a catalog load attempt and, on success, its
// duration and publish time.
func RecordCatalogLoad(ok bool, durationMs float64) {
	if !ok {
		globalManager.catalogLoads.WithLabelValues("error").Inc()
		return
	}
	globalManager.catalogLoads.WithLabelValues("ok").Inc()
	globalManager.catalogLoadDuration.Observe(durationMs)
	globalManager.catalogLastLoadUnix.Set(float64(time.Now().Unix()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

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

// CollectSystem samples system metrics on the global manager.
func CollectSystem() { globalManager.CollectSystem() }

// RunSystemCollector runs the global manager's system collector loop.
func RunSystemCollector(ctx context.Context) { globalManager.RunSystemCollector(ctx) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
