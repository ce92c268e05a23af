// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"fmt"
	"time"
)

// Rerank modes.
const (
	// RerankBlend blends reciprocal interest and tag ranks by InterestTagBias.
	RerankBlend = "blend"
	// RerankRRF fuses interest, tag and retrieval scores with weighted RRF
	// using ScoreWeights.
	RerankRRF = "rrf"
)

// Config contains the personalization settings.
type Config struct {
	// MaxNumberDocuments is the largest count a caller may request.
	MaxNumberDocuments int `koanf:"max_number_documents" validate:"min=1"`

	// DefaultNumberDocuments is used when a request does not set a count.
	DefaultNumberDocuments int `koanf:"default_number_documents" validate:"min=1"`

	// MaxNumberCandidates is the total kNN candidate budget shared by the
	// CoIs of one request. Zero means "same as the count".
	MaxNumberCandidates int `koanf:"max_number_candidates" validate:"min=0"`

	// MaxCoisForKnn caps the number of CoIs queried per request.
	MaxCoisForKnn int `koanf:"max_cois_for_knn" validate:"min=1"`

	// InterestTagBias is the share of the interest rank in the blend.
	InterestTagBias float32 `koanf:"interest_tag_bias" validate:"unit_interval"`

	// ScoreWeights weigh interest, tag and retrieval scores in RRF mode.
	ScoreWeights []float32 `koanf:"score_weights" validate:"len=3,dive,gte=0"`

	// RerankMode is RerankBlend or RerankRRF.
	RerankMode string `koanf:"rerank_mode" validate:"oneof=blend rrf"`

	// StoreUserHistory records reactions so that they are excluded from
	// later retrievals.
	StoreUserHistory bool `koanf:"store_user_history"`

	// MaxStatelessHistorySize limits the history of stateless requests.
	MaxStatelessHistorySize int `koanf:"max_stateless_history_size" validate:"min=1"`

	// QueryTimeout bounds each per-CoI kNN query. Zero disables it.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=0"`

	// QueriesPerSecond throttles kNN queries across all requests. Zero
	// disables throttling.
	QueriesPerSecond float64 `koanf:"queries_per_second" validate:"gte=0"`

	// QueryBurst is the limiter burst size.
	QueryBurst int `koanf:"query_burst" validate:"min=0"`
}

// DefaultConfig returns the default personalization settings.
func DefaultConfig() Config {
	return Config{
		MaxNumberDocuments:      100,
		DefaultNumberDocuments:  10,
		MaxNumberCandidates:     100,
		MaxCoisForKnn:           10,
		InterestTagBias:         0.5,
		ScoreWeights:            []float32{1, 1, 0},
		RerankMode:              RerankBlend,
		StoreUserHistory:        true,
		MaxStatelessHistorySize: 20,
		QueryTimeout:            5 * time.Second,
		QueryBurst:              10,
	}
}

// Validate checks the settings.
//
//nolint:gocritic // Config is passed by value for immutability
func (c Config) Validate() error {
	if c.MaxNumberDocuments < 1 {
		return fmt.Errorf("max_number_documents must be at least 1, got %d", c.MaxNumberDocuments)
	}
	if c.DefaultNumberDocuments < 1 || c.DefaultNumberDocuments > c.MaxNumberDocuments {
		return fmt.Errorf("default_number_documents must be in [1, %d], got %d", c.MaxNumberDocuments, c.DefaultNumberDocuments)
	}
	if c.MaxNumberCandidates < 0 {
		return fmt.Errorf("max_number_candidates must not be negative, got %d", c.MaxNumberCandidates)
	}
	if c.MaxCoisForKnn < 1 {
		return fmt.Errorf("max_cois_for_knn must be at least 1, got %d", c.MaxCoisForKnn)
	}
	if c.InterestTagBias < 0 || c.InterestTagBias > 1 {
		return fmt.Errorf("interest_tag_bias must be in [0, 1], got %v", c.InterestTagBias)
	}
	if len(c.ScoreWeights) != 3 {
		return fmt.Errorf("score_weights must have 3 entries, got %d", len(c.ScoreWeights))
	}
	for _, w := range c.ScoreWeights {
		if w < 0 {
			return fmt.Errorf("score_weights must not be negative, got %v", c.ScoreWeights)
		}
	}
	if c.RerankMode != RerankBlend && c.RerankMode != RerankRRF {
		return fmt.Errorf("rerank_mode must be %q or %q, got %q", RerankBlend, RerankRRF, c.RerankMode)
	}
	if c.MaxStatelessHistorySize < 1 {
		return fmt.Errorf("max_stateless_history_size must be at least 1, got %d", c.MaxStatelessHistorySize)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative, got %v", c.QueryTimeout)
	}
	if c.QueriesPerSecond < 0 || c.QueryBurst < 0 {
		return fmt.Errorf("query rate limit must not be negative")
	}
	return nil
}

// scoreWeights returns ScoreWeights as a fixed array.
//
//nolint:gocritic // Config is passed by value for immutability
func (c Config) scoreWeights() [3]float32 {
	var w [3]float32
	copy(w[:], c.ScoreWeights)
	return w
}

// ClampCount applies the default and maximum document counts.
//
//nolint:gocritic // Config is passed by value for immutability
func (c Config) ClampCount(count int) int {
	if count <= 0 {
		return c.DefaultNumberDocuments
	}
	if count > c.MaxNumberDocuments {
		return c.MaxNumberDocuments
	}
	return count
}
