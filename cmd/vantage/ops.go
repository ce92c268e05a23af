// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/middleware"
)

// readinessCheck reports whether a dependency can serve requests.
type readinessCheck func(ctx context.Context) error

// healthStatus is the body of the health endpoints.
type healthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// opsRouter serves metrics and health checks.
type opsRouter struct {
	started      time.Time
	checks       map[string]readinessCheck
	checkTimeout time.Duration
}

// newOpsRouter builds the ops handler. readyLimit caps readiness checks per
// client IP per minute; zero disables it.
func newOpsRouter(started time.Time, checks map[string]readinessCheck, readyLimit int) http.Handler {
	o := &opsRouter{
		started:      started,
		checks:       checks,
		checkTimeout: 2 * time.Second,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", o.live)
		r.With(readyLimiter(readyLimit)).Get("/ready", o.ready)
	})
	r.Handle("/metrics", o.metricsHandler())
	return r
}

func readyLimiter(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(limit, time.Minute)
}

func (o *opsRouter) metricsHandler() http.Handler {
	next := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.UpdateUptime(o.started)
		next.ServeHTTP(w, r)
	})
}

func (o *opsRouter) live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &healthStatus{
		Status:        "alive",
		Version:       version,
		UptimeSeconds: time.Since(o.started).Seconds(),
	})
}

func (o *opsRouter) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), o.checkTimeout)
	defer cancel()

	names := make([]string, 0, len(o.checks))
	for name := range o.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := &healthStatus{
		Status:        "ready",
		Version:       version,
		UptimeSeconds: time.Since(o.started).Seconds(),
		Checks:        make(map[string]string, len(names)),
	}
	code := http.StatusOK
	for _, name := range names {
		if err := o.checks[name](ctx); err != nil {
			status.Checks[name] = err.Error()
			status.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
