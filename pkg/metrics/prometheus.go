// Package metrics provides Prometheus metrics for the ratecard service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// priceBuckets cover sponsorship averages in whole USD.
var priceBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the ratecard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	refresh          atomic.Int64 // current interval, adjustable at runtime
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Valuation and offer evaluation
	valuationsTotal   prometheus.Counter
	valuationAverage  prometheus.Histogram
	valuationLatency  prometheus.Histogram
	evaluationsTotal  *prometheus.CounterVec
	defaultedFactors  *prometheus.CounterVec
	offerRatio        prometheus.Histogram
	complianceChecks  *prometheus.CounterVec
	complianceAlerts  *prometheus.CounterVec
	ledgerParties     prometheus.Gauge
	ledgerRecords     prometheus.Gauge
	transactionsTotal *prometheus.CounterVec

	// Pipeline
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueRejections  *prometheus.CounterVec
	workerCount      prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrors     *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
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

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ratecard",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh.Store(int64(m.refreshInterval))
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.valuationsTotal = m.counter("valuations_total", "Total number of rate valuations computed")
	m.valuationAverage = m.histogram("valuation_average_usd", "Distribution of fair-value averages in USD", priceBuckets)
	m.valuationLatency = m.histogram("valuation_latency_milliseconds", "Valuation latency in milliseconds", m.histogramBuckets)
	m.evaluationsTotal = m.counterVec("offer_evaluations_total", "Offer evaluations by verdict", "verdict")
	m.defaultedFactors = m.counterVec("defaulted_factors_total", "Factors that fell back to the neutral multiplier", "factor")
	m.offerRatio = m.histogram("offer_ratio", "Offer to fair-value ratio", []float64{0.25, 0.5, 0.75, 0.95, 1.25, 2})
	m.complianceChecks = m.counterVec("compliance_assessments_total", "Compliance assessments by risk tier", "risk")
	m.complianceAlerts = m.counterVec("compliance_alerts_total", "Risk escalation alerts by risk tier", "risk")
	m.ledgerParties = m.gauge("ledger_counterparties", "Counterparties tracked in the ledger")
	m.ledgerRecords = m.gauge("ledger_transactions", "Transactions stored in the ledger")
	m.transactionsTotal = m.counterVec("transactions_total", "Transactions received by outcome", "outcome")

	m.queueSize = m.gauge("queue_size", "Current size of the transaction queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the transaction queue")
	m.queueUtilization = m.gauge("queue_utilization", "Queue utilization ratio (0-1)")
	m.queueRejections = m.counterVec("queue_rejections_total", "Enqueue rejections by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Number of ledger workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Time to persist and assess a transaction", m.histogramBuckets)
	m.workerErrors = m.counterVec("worker_errors_total", "Worker failures by stage", "stage")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", Buckets: m.histogramBuckets, ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordValuation records a computed valuation.
func RecordValuation(average int64, latency time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.valuationsTotal.Inc()
	globalManager.valuationAverage.Observe(float64(average))
	globalManager.valuationLatency.Observe(float64(latency.Microseconds()) / 1000)
}

// RecordDefaultedFactor counts a factor resolved through its fallback entry.
func RecordDefaultedFactor(factor string) {
	if globalManager.enabled {
		globalManager.defaultedFactors.WithLabelValues(factor).Inc()
	}
}

// RecordEvaluation records an offer verdict and its ratio.
func RecordEvaluation(verdict string, ratio float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.evaluationsTotal.WithLabelValues(verdict).Inc()
	globalManager.offerRatio.Observe(ratio)
}

// RecordComplianceAssessment counts an assessment by risk tier.
func RecordComplianceAssessment(risk string) {
	if globalManager.enabled {
		globalManager.complianceChecks.WithLabelValues(risk).Inc()
	}
}

// RecordComplianceAlert counts a published escalation.
func RecordComplianceAlert(risk string) {
	if globalManager.enabled {
		globalManager.complianceAlerts.WithLabelValues(risk).Inc()
	}
}

// UpdateLedger sets ledger size gauges.
func UpdateLedger(counterparties, transactions int) {
	if !globalManager.enabled {
		return
	}
	globalManager.ledgerParties.Set(float64(counterparties))
	globalManager.ledgerRecords.Set(float64(transactions))
}

// RecordTransaction counts a received transaction by outcome
// (accepted, duplicate, rejected, stored).
func RecordTransaction(outcome string) {
	if globalManager.enabled {
		globalManager.transactionsTotal.WithLabelValues(outcome).Inc()
	}
}

// UpdateQueue sets queue gauges.
func UpdateQueue(size, capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
	globalManager.queueCapacity.Set(float64(capacity))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueRejection counts a failed enqueue.
func RecordQueueRejection(reason string) {
	if globalManager.enabled {
		globalManager.queueRejections.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerLatency observes worker processing time.
func RecordWorkerLatency(latency time.Duration) {
	if globalManager.enabled {
		globalManager.workerLatency.Observe(float64(latency.Microseconds()) / 1000)
	}
}

// RecordWorkerError counts a worker failure at stage.
func RecordWorkerError(stage string) {
	if globalManager.enabled {
		globalManager.workerErrors.WithLabelValues(stage).Inc()
	}
}

// RecordHTTPRequest records request count and duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited counts a throttled request.
func RecordRateLimited(endpoint string) {
	if globalManager.enabled {
		globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
	}
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets allocated bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
