// Package metrics provides Prometheus metrics for the prepdeck service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Test sessions
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	sessionsLive     prometheus.Gauge
	sessionsExpired  prometheus.Counter

	// Sequencer
	answersRecorded       *prometheus.CounterVec
	difficultyTransitions *prometheus.CounterVec
	fallbackSelections    prometheus.Counter
	poolExhausted         prometheus.Counter

	// Resume analysis
	analyses           *prometheus.CounterVec
	analysisLatency    prometheus.Histogram
	recommendationsTop *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "prepdeck",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounterVec(
		m.counterOpts("sessions_started_total", "Test sessions started, by pool source"),
		[]string{"source"},
	)
	m.sessionsFinished = auto.NewCounterVec(
		m.counterOpts("sessions_finished_total", "Test sessions finished, by reason"),
		[]string{"reason"},
	)
	m.sessionsLive = auto.NewGauge(m.gaugeOpts("sessions_live", "Sessions currently held in memory"))
	m.sessionsExpired = auto.NewCounter(m.counterOpts("sessions_expired_total", "Sessions dropped by the retention sweeper"))

	m.answersRecorded = auto.NewCounterVec(
		m.counterOpts("answers_total", "Answers recorded, by difficulty and outcome"),
		[]string{"difficulty", "outcome"},
	)
	m.difficultyTransitions = auto.NewCounterVec(
		m.counterOpts("difficulty_transitions_total", "Staircase steps, by source and target tier"),
		[]string{"from", "to"},
	)
	m.fallbackSelections = auto.NewCounter(m.counterOpts("fallback_selections_total",
		"Questions served from a tier other than the requested one"))
	m.poolExhausted = auto.NewCounter(m.counterOpts("pool_exhausted_total", "Sessions that ran out of questions"))

	m.analyses = auto.NewCounterVec(
		m.counterOpts("analyses_total", "Resume analyses, by outcome"),
		[]string{"outcome"},
	)
	m.analysisLatency = auto.NewHistogram(m.histogramOpts("analysis_latency_milliseconds",
		"Keyword scoring latency in milliseconds"))
	m.recommendationsTop = auto.NewCounterVec(
		m.counterOpts("top_recommendations_total", "Job titles ranked first by the scorer"),
		[]string{"title"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("rate_limited_total", "Requests rejected by the per-client rate limiter"),
		[]string{"endpoint"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Session metrics.

// RecordSessionStarted counts a new session. source is "inline" or "bank".
func RecordSessionStarted(source string) {
	globalManager.sessionsStarted.WithLabelValues(source).Inc()
}

// RecordSessionFinished counts a finished session by reason.
func RecordSessionFinished(reason string) {
	globalManager.sessionsFinished.WithLabelValues(reason).Inc()
}

// UpdateSessionsLive sets the number of sessions held in memory.
func UpdateSessionsLive(n int) {
	globalManager.sessionsLive.Set(float64(n))
}

// RecordSessionsExpired counts sessions removed by the sweeper.
func RecordSessionsExpired(n int) {
	globalManager.sessionsExpired.Add(float64(n))
}

// Sequencer metrics.

// RecordAnswer counts an answer. outcome is "correct", "wrong" or "unanswered".
func RecordAnswer(difficulty, outcome string) {
	globalManager.answersRecorded.WithLabelValues(difficulty, outcome).Inc()
}

// RecordDifficultyTransition counts one staircase step.
func RecordDifficultyTransition(from, to string) {
	globalManager.difficultyTransitions.WithLabelValues(from, to).Inc()
}

// RecordFallbackSelection counts a question served outside its requested tier.
func RecordFallbackSelection() {
	globalManager.fallbackSelections.Inc()
}

// RecordPoolExhausted counts a session that ran out of questions.
func RecordPoolExhausted() {
	globalManager.poolExhausted.Inc()
}

// Analysis metrics.

// RecordAnalysis counts an analysis. outcome is "matched" or "no_match".
func RecordAnalysis(outcome string) {
	globalManager.analyses.WithLabelValues(outcome).Inc()
}

// RecordAnalysisLatency records scoring latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordTopRecommendation counts the title ranked first. Titles come from
// the catalog, which bounds label cardinality.
func RecordTopRecommendation(title string) {
	globalManager.recommendationsTop.WithLabelValues(title).Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// Error metrics.

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

// System metrics.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Snapshot gathers the registry and returns the summed value of every
// counter and gauge family, keyed by metric name.
func Snapshot() (map[string]float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	out := make(map[string]float64, len(families))
	for _, f := range families {
		var sum float64
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sum += float64(m.GetHistogram().GetSampleCount())
			}
		}
		out[f.GetName()] = sum
	}
	return out, nil
}
