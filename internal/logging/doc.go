// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package logging provides centralized zerolog-based structured logging for
// Vantage.
//
// A global logger is configured once with Init and used through the
// package-level level functions:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("Ops server listening")
//	logging.Error().Err(err).Msg("Failed to open document store")
//
// Long-lived components take a child logger:
//
//	logger := logging.WithComponent("orchestrator")
//
// # Context Logging
//
// Correlation and user IDs travel in the context. Reaction events carry the
// correlation ID across the message bus, so one user action can be followed
// from the publisher to the handler that updates the interests:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	ctx = logging.ContextWithUserID(ctx, string(user))
//	logging.Ctx(ctx).Info().Msg("Reaction applied")
//
// # slog Bridge
//
// SlogHandler routes log/slog records into zerolog. The supervisor tree
// uses it through sutureslog:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
