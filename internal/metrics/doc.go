// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry at package init via
promauto and exposed on the ops router:

	curl http://localhost:9464/metrics

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type (first 50 chars of the error)

Interest Metrics:
  - interest_store_operations_total: Badger interest and tag store calls (counter)
    Labels: operation, result
  - coi_reinforcements_total: CoI updates (counter)
    Labels: polarity, outcome (shifted, created, rejected)
  - coi_view_time_seconds_total: Attributed view time (counter)
  - coi_count_per_user: CoIs per user at update time (histogram)
    Labels: polarity

Retrieval Metrics:
  - knn_queries_total: Per-CoI kNN queries (counter)
    Labels: result (success, failure)
  - knn_query_duration_seconds: Per-CoI kNN latency (histogram)
  - retrieval_duration_seconds: Fan-out plus fusion latency (histogram)
    Labels: result (success, partial, failure, empty)
  - retrieval_documents: Documents returned per retrieval (histogram)
  - rerank_duration_seconds: Re-ranking latency (histogram)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by outcome (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

Event Metrics:
  - reaction_events_published_total (counter), labels: topic
  - reaction_events_consumed_total (counter), labels: topic, result
  - reaction_event_processing_duration_seconds (histogram)

Maintenance Metrics:
  - badger_value_log_gc_runs_total (counter), labels: result

System Metrics:
  - app_info: Build information (gauge), labels: version, go_version
  - app_uptime_seconds: Uptime (gauge)

# Usage

	start := time.Now()
	docs, err := searcher.KNN(ctx, params)
	metrics.RecordKnnQuery(time.Since(start), err)

# Testing

Tests assert on collectors with prometheus/testutil:

	before := testutil.ToFloat64(metrics.KnnQueries.WithLabelValues("failure"))
*/
package metrics
