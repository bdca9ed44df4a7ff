package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Roster
	playersCreated   *prometheus.CounterVec
	playersByState   *prometheus.GaugeVec
	duplicateBlocked *prometheus.CounterVec

	// Reports
	reportsSubmitted *prometheus.CounterVec
	reportsRejected  *prometheus.CounterVec
	reportsDeleted   prometheus.Counter
	feedbackAttached prometheus.Counter

	// Lifecycle
	promotions        prometheus.Counter
	promotionRetries  prometheus.Counter
	promotionFailures prometheus.Counter

	// Notifications
	notifications     *prometheus.CounterVec
	notifyQueueDepth  prometheus.Gauge
	notifyWorkerCount prometheus.Gauge

	// Storage
	storeLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
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
		namespace:        "scoutbook",
		subsystem:        "roster",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.playersCreated = auto.NewCounterVec(
		m.counter("players_created_total", "Players added to the roster by initial lifecycle state"),
		[]string{"state"},
	)
	m.playersByState = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "players",
			Help:        "Players currently on the roster by lifecycle state",
			ConstLabels: m.customLabels,
		},
		[]string{"state"},
	)
	m.duplicateBlocked = auto.NewCounterVec(
		m.counter("duplicates_blocked_total", "Player creations rejected as duplicates"),
		[]string{"reason"},
	)

	m.reportsSubmitted = auto.NewCounterVec(
		m.counter("reports_submitted_total", "Scout reports stored by check type"),
		[]string{"check_type"},
	)
	m.reportsRejected = auto.NewCounterVec(
		m.counter("reports_rejected_total", "Scout reports rejected by the first failing field"),
		[]string{"field"},
	)
	m.reportsDeleted = auto.NewCounter(m.counter("reports_deleted_total", "Scout reports deleted"))
	m.feedbackAttached = auto.NewCounter(m.counter("feedback_attached_total", "Director feedback entries attached to reports"))

	m.promotions = auto.NewCounter(m.counter("promotions_total", "Bookmarks promoted to scouted"))
	m.promotionRetries = auto.NewCounter(m.counter("promotion_retries_total", "Promotion attempts retried after a store error"))
	m.promotionFailures = auto.NewCounter(m.counter("promotion_failures_total", "Promotions abandoned after exhausting retries"))

	m.notifications = auto.NewCounterVec(
		m.counter("notifications_total", "Change notifications by kind and outcome"),
		[]string{"kind", "outcome"},
	)
	m.notifyQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notify_queue_depth",
		Help:        "Change notifications waiting for delivery",
		ConstLabels: m.customLabels,
	})
	m.notifyWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notify_workers",
		Help:        "Running notification delivery workers",
		ConstLabels: m.customLabels,
	})

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "store_latency_milliseconds",
			Help:        "Store operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordPlayerCreated counts a new player by its initial state.
func RecordPlayerCreated(state string) {
	globalManager.playersCreated.WithLabelValues(state).Inc()
}

// UpdatePlayersByState sets the roster size for one lifecycle state.
func UpdatePlayersByState(state string, count int) {
	globalManager.playersByState.WithLabelValues(state).Set(float64(count))
}

// RecordDuplicateBlocked counts a rejected creation; reason is "external_ref" or "identity_key".
func RecordDuplicateBlocked(reason string) {
	globalManager.duplicateBlocked.WithLabelValues(reason).Inc()
}

// RecordReportSubmitted counts a stored report.
func RecordReportSubmitted(checkType string) {
	globalManager.reportsSubmitted.WithLabelValues(checkType).Inc()
}

// RecordReportRejected counts a report that failed validation on field.
func RecordReportRejected(field string) {
	globalManager.reportsRejected.WithLabelValues(field).Inc()
}

// RecordReportDeleted increments the deleted reports counter.
func RecordReportDeleted() {
	globalManager.reportsDeleted.Inc()
}

// RecordFeedbackAttached increments the director feedback counter.
func RecordFeedbackAttached() {
	globalManager.feedbackAttached.Inc()
}

// RecordPromotion increments the promotions counter.
func RecordPromotion() {
	globalManager.promotions.Inc()
}

// RecordPromotionRetry increments the promotion retry counter.
func RecordPromotionRetry() {
	globalManager.promotionRetries.Inc()
}

// RecordPromotionFailure increments the abandoned promotion counter.
func RecordPromotionFailure() {
	globalManager.promotionFailures.Inc()
}

// RecordNotification counts a change notification by outcome: "accepted" or
// "failed" at the publisher, "delivered", "undelivered" or "dropped" at the
// delivery workers.
func RecordNotification(kind, outcome string) {
	globalManager.notifications.WithLabelValues(kind, outcome).Inc()
}

// UpdateNotifyQueueDepth sets the number of queued notifications.
func UpdateNotifyQueueDepth(n int) {
	globalManager.notifyQueueDepth.Set(float64(n))
}

// UpdateNotifyWorkers sets the number of running delivery workers.
func UpdateNotifyWorkers(n int) {
	globalManager.notifyWorkerCount.Set(float64(n))
}

// RecordStoreLatency records the latency of one store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
