// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package embedding

import (
	"fmt"
	"strings"
)

// Pooling selects how per-token vectors of an encoder output are reduced to a
// single document embedding.
type Pooling int

const (
	// PoolingAverage averages all token vectors.
	PoolingAverage Pooling = iota
	// PoolingFirst uses the first ([CLS]) token vector.
	PoolingFirst
)

// String returns the configuration name of the strategy.
func (p Pooling) String() string {
	switch p {
	case PoolingAverage:
		return "average"
	case PoolingFirst:
		return "first"
	default:
		return fmt.Sprintf("pooling(%d)", int(p))
	}
}

// ParsePooling parses a configuration value. Empty selects average pooling.
func ParsePooling(s string) (Pooling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "average", "avg", "mean":
		return PoolingAverage, nil
	case "first", "cls":
		return PoolingFirst, nil
	default:
		return 0, fmt.Errorf("unknown pooling strategy %q", s)
	}
}

// Pool reduces a token matrix to a normalized embedding.
func (p Pooling) Pool(tokens [][]float32) (Embedding, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens to pool", ErrInvalidEmbedding)
	}
	dim := len(tokens[0])

	switch p {
	case PoolingFirst:
		return New(tokens[0])
	case PoolingAverage:
		sum := make([]float32, dim)
		for row, token := range tokens {
			if len(token) != dim {
				return nil, fmt.Errorf("%w: token %d has dimension %d, want %d",
					ErrInvalidEmbedding, row, len(token), dim)
			}
			for i, v := range token {
				sum[i] += v
			}
		}
		n := float32(len(tokens))
		for i := range sum {
			sum[i] /= n
		}
		return New(sum)
	default:
		return nil, fmt.Errorf("unsupported pooling strategy %s", p)
	}
}
