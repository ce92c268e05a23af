// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package middleware provides HTTP middleware for the Vantage ops server.
//
//   - RequestID: propagates or assigns X-Request-ID and seeds the logging
//     correlation ID from it
//   - PrometheusMetrics: request count, latency and in-flight gauge
//     labelled by chi route pattern
//
// Both follow the chi middleware signature:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
package middleware
