// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package embedding provides the vector type shared by the interest model,
// the storage layer and the retrieval pipeline.
//
// Embeddings are produced by an external encoder behind the Provider
// interface. Everything that enters the interest model passes through
// Validate and Normalize first so that NaN or infinite components are
// rejected at the boundary instead of poisoning stored interests.
//
// StaticProvider files may hold per-token encoder output instead of a
// single vector. The tokens are reduced with a Pooling strategy, which the
// interests score command takes from --pooling:
//
//	pooling, err := embedding.ParsePooling("first")
//	provider, err := embedding.LoadStaticProvider(f, pooling)
package embedding
