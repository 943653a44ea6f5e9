// Package metrics provides Prometheus metrics for the benchscore pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values used across metric vectors.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
	OutcomeTimeout = "timeout"
)

// Manager manages all Prometheus metrics for the scoring pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Input Metrics - what the event log contained
	eventsRead          prometheus.Counter
	checkEvents         prometheus.Counter
	timeoutEvents       prometheus.Counter
	unclassifiedEvents  prometheus.Counter
	parseErrors         prometheus.Counter
	failInconsistencies *prometheus.CounterVec

	// Run Metrics - one observation per scored log
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	lastScore        prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
	scenarioOutcomes *prometheus.GaugeVec

	// Watch Metrics - queue and worker pool behind watch mode
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	jobsDuplicate      prometheus.Counter
	jobErrors          prometheus.Counter

	// HTTP Metrics - ops endpoint in watch mode
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "benchscore",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsRead = m.counter("events_read_total", "Total number of log records decoded")
	m.checkEvents = m.counter("check_events_total", "Total number of check samples seen")
	m.timeoutEvents = m.counter("timeout_events_total", "Total number of requests tagged as timed out")
	m.unclassifiedEvents = m.counter("unclassified_timeouts_total", "Timeout samples whose URL matched no scenario")
	m.parseErrors = m.counter("parse_errors_total", "Event logs rejected because a line was not valid JSON")

	m.failInconsistencies = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fail_inconsistencies_total",
		Help:        "Scenarios whose timeout count exceeded their failed checks",
		ConstLabels: m.constLabels,
	}, []string{"scenario"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Scoring runs by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of one scoring run",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.lastScore = m.gauge("last_score", "Score of the most recent run")
	m.lastRunTimestamp = m.gauge("last_run_timestamp_seconds", "Unix time the most recent run finished")

	m.scenarioOutcomes = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scenario_outcomes",
		Help:        "Per-scenario outcome counts of the most recent run",
		ConstLabels: m.constLabels,
	}, []string{"scenario", "method", "outcome"})

	m.queueSize = m.gauge("queue_size", "Current number of queued scoring jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of jobs dequeued")

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_enqueue_errors_total",
		Help:        "Jobs rejected by the queue, by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.workerCount = m.gauge("worker_count", "Number of scoring workers")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Watch events skipped because the file was already scored")
	m.jobErrors = m.counter("job_errors_total", "Scoring jobs that failed in watch mode")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordEventRead increments the decoded records counter.
func RecordEventRead() {
	globalManager.eventsRead.Inc()
}

// RecordCheckEvent increments the check samples counter.
func RecordCheckEvent() {
	globalManager.checkEvents.Inc()
}

// RecordTimeoutEvent increments the timeout samples counter.
func RecordTimeoutEvent() {
	globalManager.timeoutEvents.Inc()
}

// RecordUnclassifiedTimeout counts a timeout whose URL matched no rule.
func RecordUnclassifiedTimeout() {
	globalManager.unclassifiedEvents.Inc()
}

// RecordParseError counts an event log rejected for malformed JSON.
func RecordParseError() {
	globalManager.parseErrors.Inc()
}

// RecordFailInconsistency counts a scenario whose corrected fail went negative.
func RecordFailInconsistency(scenario string) {
	globalManager.failInconsistencies.WithLabelValues(scenario).Inc()
}

// RecordRun counts a finished run.
func RecordRun(ok bool) {
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	globalManager.runs.WithLabelValues(result).Inc()
}

// RecordRunDuration observes the wall time of a run in seconds.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// UpdateScore sets the score of the latest run.
func UpdateScore(score int, finishedUnix int64) {
	globalManager.lastScore.Set(float64(score))
	globalManager.lastRunTimestamp.Set(float64(finishedUnix))
}

// UpdateScenarioOutcome sets one outcome count of the latest run.
func UpdateScenarioOutcome(scenario, method, outcome string, count int) {
	globalManager.scenarioOutcomes.WithLabelValues(scenario, method, outcome).Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the worker pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordJobDuplicate counts a watch event for an already scored file.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobError counts a failed watch-mode job.
func RecordJobError() {
	globalManager.jobErrors.Inc()
}

// RecordHTTPRequest counts one request to the ops endpoint.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes how long one request took.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
