// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package config loads and validates Vantage configuration.
//
// Configuration is layered with Koanf v2. Later layers override earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: CONFIG_PATH, or the first of DefaultConfigPaths
//  3. Environment variables listed in envMappings
//
// Only mapped environment variables are read, so unrelated variables never
// leak into the configuration.
//
// # Sections
//
//   - coi: center of interest parameters (coi.Config)
//   - personalize: retrieval and re-ranking parameters (personalize.Config)
//   - storage: Badger user store, DuckDB document store, search breaker
//   - events: reaction event transport and router
//   - server: operational HTTP server (metrics and health checks)
//   - logging: level, format and caller
//
// # Example
//
//	# config.yaml
//	coi:
//	  threshold: 0.7
//	  horizon: 720h
//	personalize:
//	  rerank_mode: rrf
//	  score_weights: [1, 1, 0]
//	events:
//	  transport:
//	    backend: nats
//	    nats:
//	      embedded: true
//
// # Validation
//
// Validate applies struct tag rules through the validation package, then
// the semantic checks of coi.Config and personalize.Config, then the rules
// that span several fields (storage paths, NATS URL, logging). The first
// failure is returned.
package config
