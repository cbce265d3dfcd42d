// Package metrics provides Prometheus metrics for the StylePulse service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer
	gatherer         *prometheus.Registry // set when the manager owns its registry

	// Pipeline
	uploadsClassified   *prometheus.CounterVec
	uploadsRejected     *prometheus.CounterVec
	classificationError prometheus.Counter
	pipelineLatency     prometheus.Histogram

	// Renderers
	guidesRendered  prometheus.Counter
	chartsRendered  *prometheus.CounterVec
	renderErrors    *prometheus.CounterVec
	renderLatency   *prometheus.HistogramVec
	catalogCategory prometheus.Gauge

	// Sessions
	liveSessions    prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsEvicted prometheus.Counter
	sessionsReset   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var global atomic.Pointer[Manager] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry, so default Go metrics never leak into /healthz. Call it before the
// HTTP handlers capture GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	m.gatherer = registry
	global.Store(m)
}

// active returns the global manager, or nil when collection is disabled.
func active() *Manager {
	m := global.Load()
	if m == nil || !m.enabled {
		return nil
	}
	return m
}

// Enabled reports whether the global manager records anything.
func Enabled() bool {
	return active() != nil
}

// RefreshInterval is how often gauge updaters should poll their sources.
func RefreshInterval() time.Duration {
	return global.Load().refreshInterval
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stylepulse",
		subsystem:        "app",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
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

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.uploadsClassified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("uploads_classified_total"),
		Help:        "Uploads classified, by assigned style category",
		ConstLabels: labels,
	}, []string{"category"})

	m.uploadsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("uploads_rejected_total"),
		Help:        "Uploads rejected before classification, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.classificationError = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("classification_errors_total"),
		Help:        "Classifications that failed",
		ConstLabels: labels,
	})

	m.pipelineLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("upload_pipeline_latency_milliseconds"),
		Help:        "Latency of classify, lookup and record for one upload",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.guidesRendered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("guides_rendered_total"),
		Help:        "PDF outfit guides rendered",
		ConstLabels: labels,
	})

	m.chartsRendered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("charts_rendered_total"),
		Help:        "Trend charts rendered, by format",
		ConstLabels: labels,
	}, []string{"format"})

	m.renderErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("render_errors_total"),
		Help:        "Renderer failures, by renderer",
		ConstLabels: labels,
	}, []string{"renderer"})

	m.renderLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("render_latency_milliseconds"),
		Help:        "Renderer latency, by renderer",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"renderer"})

	m.catalogCategory = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_categories"),
		Help:        "Number of style categories in the loaded catalog",
		ConstLabels: labels,
	})

	m.liveSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_live"),
		Help:        "Sessions currently held by the session store",
		ConstLabels: labels,
	})

	m.sessionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_created_total"),
		Help:        "Sessions created",
		ConstLabels: labels,
	})

	m.sessionsEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_evicted_total"),
		Help:        "Sessions evicted because of capacity or idle expiry",
		ConstLabels: labels,
	})

	m.sessionsReset = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_reset_total"),
		Help:        "Sessions discarded on user request",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by endpoint, method and type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average GC pause in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})
}

// Pipeline.

// RecordUploadClassified counts one upload assigned to category.
func RecordUploadClassified(category string) {
	m := active()
	if m == nil {
		return
	}
	m.uploadsClassified.WithLabelValues(category).Inc()
}

// RecordUploadRejected counts one upload rejected for reason.
func RecordUploadRejected(reason string) {
	m := active()
	if m == nil {
		return
	}
	m.uploadsRejected.WithLabelValues(reason).Inc()
}

// RecordClassificationError counts one failed classification.
func RecordClassificationError() {
	m := active()
	if m == nil {
		return
	}
	m.classificationError.Inc()
}

// RecordPipelineLatency observes the classify-lookup-record latency.
func RecordPipelineLatency(latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.pipelineLatency.Observe(latencyMs)
}

// Renderers.

// RecordGuideRendered counts one rendered PDF guide.
func RecordGuideRendered() {
	m := active()
	if m == nil {
		return
	}
	m.guidesRendered.Inc()
}

// RecordChartRendered counts one rendered chart in format (png, xlsx).
func RecordChartRendered(format string) {
	m := active()
	if m == nil {
		return
	}
	m.chartsRendered.WithLabelValues(format).Inc()
}

// RecordRenderError counts one renderer failure.
func RecordRenderError(renderer string) {
	m := active()
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(renderer).Inc()
}

// RecordRenderLatency observes renderer latency.
func RecordRenderLatency(renderer string, latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.renderLatency.WithLabelValues(renderer).Observe(latencyMs)
}

// UpdateCatalogCategories sets the catalog size gauge.
func UpdateCatalogCategories(count int) {
	m := active()
	if m == nil {
		return
	}
	m.catalogCategory.Set(float64(count))
}

// Sessions.

// UpdateLiveSessions sets the live session gauge.
func UpdateLiveSessions(count int) {
	m := active()
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(count))
}

// RecordSessionCreated counts one new session.
func RecordSessionCreated() {
	m := active()
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// RecordSessionEvicted counts one evicted session.
func RecordSessionEvicted() {
	m := active()
	if m == nil {
		return
	}
	m.sessionsEvicted.Inc()
}

// RecordSessionReset counts one session discarded by the user.
func RecordSessionReset() {
	m := active()
	if m == nil {
		return
	}
	m.sessionsReset.Inc()
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	m := active()
	if m == nil {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	m := active()
	if m == nil {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	m := active()
	if m == nil {
		return
	}
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	m := active()
	if m == nil {
		return
	}
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry of the global manager.
func GetRegistry() *prometheus.Registry {
	return global.Load().gatherer
}
