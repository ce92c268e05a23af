// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package events carries user reactions to the personalization engine
// asynchronously using Watermill.
//
// Producers publish ReactionEvent values to a topic. A Router consumes the
// topic and hands each event to a ReactionHandler, which applies it through
// a Reactor (the personalize.Engine in production):
//
//	┌───────────┐    ┌──────────────────┐    ┌─────────────────┐    ┌────────┐
//	│ Publisher │───▶│ GoChannel / NATS │───▶│ Router          │───▶│ Engine │
//	│ (breaker) │    │   JetStream      │    │ ReactionHandler │    │        │
//	└───────────┘    └──────────────────┘    └────────┬────────┘    └────────┘
//	                                                  │ exhausted / invalid
//	                                                  ▼
//	                                         ┌─────────────────┐
//	                                         │  poison queue   │
//	                                         └─────────────────┘
//
// # Transports
//
// Two backends are supported, selected by TransportConfig.Backend:
//
//   - gochannel: in-process, used by default and in tests
//   - nats: NATS JetStream through watermill-nats, either against an
//     external server or an EmbeddedServer started in-process
//
// Streams are auto-provisioned, so topic names must be valid JetStream
// stream names (no dots or wildcards).
//
// # Error Handling
//
// Handlers classify failures. Malformed payloads and reactions to unknown
// documents wrap ErrInvalidEvent; these are never retried and go straight
// to the poison queue, or are acknowledged and dropped when no poison queue
// is configured. Every other error is retried with exponential backoff.
//
// Publishing is guarded by an optional gobreaker circuit breaker so a
// broken broker fails fast instead of stalling callers.
//
// # Deduplication
//
// Every message carries its event id as the Nats-Msg-Id header, letting
// JetStream drop duplicates published within the stream's duplicate window.
//
// # Observability
//
// Published and consumed events are counted per topic in the metrics
// package. Correlation ids travel in message metadata and are restored
// into the handler's context for logging.
package events
