// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

/*
Package storage provides the document index and the per-user state stores.

# Documents

Documents live in DuckDB (DuckDBStore). Embeddings are stored as FLOAT[]
and kNN queries are exact scans scored with list_cosine_similarity,
ordered by score then id, both descending. Property filters are translated
to SQL by the filter package.

# User State

Interests, tag weights and interactions live in BadgerDB (BadgerStore),
one JSON value per user:

	interests:<user>            coi.UserInterests
	tags:<user>                 models.TagWeights
	interaction:<user>\x00<doc> RFC3339 timestamp

A reaction writes all three keys in one transaction (ApplyReaction).

MemoryStore implements every interface in process memory and is used by
tests and single-node development setups.

# Resilience

BreakerSearcher wraps any Searcher with a sony/gobreaker circuit breaker.
While open, calls fail fast with ErrCircuitOpen. Breaker state and
transitions are exported as Prometheus metrics.
*/
package storage
