// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - DuckDB document queries
// - CoI updates and personalized kNN retrieval
// - re-ranking
// - reaction events (watermill / NATS)
// - circuit breakers around document search

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Interest Store Metrics
	InterestStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_store_operations_total",
			Help: "Total number of interest store operations",
		},
		[]string{"operation", "result"}, // operation: load, store, delete, tags_load, tags_add
	)

	// CoI Metrics
	CoiReinforcements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coi_reinforcements_total",
			Help: "Total number of CoI updates from user reactions",
		},
		[]string{"polarity", "outcome"}, // outcome: shifted, created, rejected
	)

	CoiViewTimeSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coi_view_time_seconds_total",
			Help: "Total view time attributed to positive CoIs",
		},
	)

	CoisPerUser = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coi_count_per_user",
			Help:    "Number of CoIs per user observed at update time",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
		},
		[]string{"polarity"},
	)

	// Retrieval Metrics
	KnnQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knn_queries_total",
			Help: "Total number of per-CoI kNN queries",
		},
		[]string{"result"}, // success, failure
	)

	KnnQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "knn_query_duration_seconds",
			Help:    "Duration of a single per-CoI kNN query",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_duration_seconds",
			Help:    "Duration of personalized retrieval including fan-out and fusion",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"}, // success, partial, failure, empty
	)

	RetrievalDocuments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_documents",
			Help:    "Number of documents returned by personalized retrieval",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	RerankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rerank_duration_seconds",
			Help:    "Duration of document re-ranking",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Reaction Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reaction_events_published_total",
			Help: "Total number of reaction events published",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reaction_events_consumed_total",
			Help: "Total number of reaction events consumed",
		},
		[]string{"topic", "result"}, // result: processed, invalid, failed
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reaction_event_processing_duration_seconds",
			Help:    "Time spent handling a reaction event",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ops HTTP Metrics
	OpsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_http_requests_total",
			Help: "Total number of requests served by the ops server",
		},
		[]string{"method", "route", "status"},
	)

	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_http_request_duration_seconds",
			Help:    "Ops server request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	OpsActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ops_http_active_requests",
			Help: "Number of in-flight ops server requests",
		},
	)

	// Maintenance Metrics
	BadgerGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badger_value_log_gc_runs_total",
			Help: "Total number of Badger value log GC passes",
		},
		[]string{"result"}, // rewritten, nothing, error
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordStoreOperation records an interest or tag store operation.
func RecordStoreOperation(operation string, err error) {
	InterestStoreOperations.WithLabelValues(operation, resultLabel(err)).Inc()
}

// RecordReinforcement records a CoI update.
func RecordReinforcement(polarity, outcome string) {
	CoiReinforcements.WithLabelValues(polarity, outcome).Inc()
}

// RecordCoiCounts observes the number of positive and negative CoIs.
func RecordCoiCounts(positive, negative int) {
	CoisPerUser.WithLabelValues("positive").Observe(float64(positive))
	CoisPerUser.WithLabelValues("negative").Observe(float64(negative))
}

// RecordViewTime adds attributed view time.
func RecordViewTime(d time.Duration) {
	if d > 0 {
		CoiViewTimeSeconds.Add(d.Seconds())
	}
}

// RecordKnnQuery records a single per-CoI kNN query.
func RecordKnnQuery(duration time.Duration, err error) {
	KnnQueryDuration.Observe(duration.Seconds())
	KnnQueries.WithLabelValues(resultLabel(err)).Inc()
}

// RecordRetrieval records a complete retrieval.
func RecordRetrieval(result string, duration time.Duration, documents int) {
	RetrievalDuration.WithLabelValues(result).Observe(duration.Seconds())
	RetrievalDocuments.Observe(float64(documents))
}

// RecordRerank records a re-ranking pass.
func RecordRerank(duration time.Duration) {
	RerankDuration.Observe(duration.Seconds())
}

// RecordEventPublished records a published reaction event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed records the outcome of handling a reaction event.
func RecordEventConsumed(topic, result string, duration time.Duration) {
	EventsConsumed.WithLabelValues(topic, result).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordOpsRequest records a completed ops server request.
func RecordOpsRequest(method, route, status string, duration time.Duration) {
	OpsRequests.WithLabelValues(method, route, status).Inc()
	OpsRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		OpsActiveRequests.Inc()
		return
	}
	OpsActiveRequests.Dec()
}

// RecordBadgerGC records a value log GC pass.
func RecordBadgerGC(result string) {
	BadgerGCRuns.WithLabelValues(result).Inc()
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime sets the uptime gauge from the process start time.
func UpdateUptime(started time.Time) {
	AppUptime.Set(time.Since(started).Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
