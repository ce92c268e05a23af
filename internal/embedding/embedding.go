// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidEmbedding is returned for vectors with non-finite components,
// a zero norm or an unexpected dimensionality.
var ErrInvalidEmbedding = errors.New("invalid embedding")

// Embedding is a dense float32 vector. Embeddings handed to the interest
// model are expected to be normalized to unit length.
type Embedding []float32

// New validates values and returns them normalized to unit length.
// The input slice is not modified.
func New(values []float32) (Embedding, error) {
	e := Embedding(values)
	if err := e.Validate(0); err != nil {
		return nil, err
	}
	return e.Normalize()
}

// Validate checks that every component is finite and, when dim > 0, that the
// vector has exactly dim components.
func (e Embedding) Validate(dim int) error {
	if len(e) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidEmbedding)
	}
	if dim > 0 && len(e) != dim {
		return fmt.Errorf("%w: dimension %d, want %d", ErrInvalidEmbedding, len(e), dim)
	}
	for i, v := range e {
		f := float64(v)
		if math.IsNaN(f) {
			return fmt.Errorf("%w: NaN at index %d", ErrInvalidEmbedding, i)
		}
		if math.IsInf(f, 0) {
			return fmt.Errorf("%w: infinite value at index %d", ErrInvalidEmbedding, i)
		}
	}
	return nil
}

// Norm returns the L2 norm of the vector.
func (e Embedding) Norm() float32 {
	var sum float64
	for _, v := range e {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum))
}

// Normalize returns a unit length copy of the vector.
func (e Embedding) Normalize() (Embedding, error) {
	norm := e.Norm()
	if norm == 0 || math.IsNaN(float64(norm)) || math.IsInf(float64(norm), 0) {
		return nil, fmt.Errorf("%w: norm %v cannot be normalized", ErrInvalidEmbedding, norm)
	}
	out := make(Embedding, len(e))
	for i, v := range e {
		out[i] = v / norm
	}
	return out, nil
}

// Dot returns the dot product of two vectors. For unit vectors this is the
// cosine similarity in [-1, 1]. Components beyond the shorter vector are
// ignored.
func (e Embedding) Dot(other Embedding) float32 {
	n := min(len(e), len(other))
	var sum float32
	for i := 0; i < n; i++ {
		sum += e[i] * other[i]
	}
	return sum
}

// Scale returns a copy of the vector multiplied by factor.
func (e Embedding) Scale(factor float32) Embedding {
	out := make(Embedding, len(e))
	for i, v := range e {
		out[i] = v * factor
	}
	return out
}

// Add returns the element-wise sum of two vectors of equal length.
func (e Embedding) Add(other Embedding) Embedding {
	out := make(Embedding, len(e))
	for i := range e {
		if i < len(other) {
			out[i] = e[i] + other[i]
		} else {
			out[i] = e[i]
		}
	}
	return out
}

// Clone returns a copy that does not share memory with e.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Provider turns text into embeddings. Implementations live outside this
// module (model inference services); Vantage only consumes them.
type Provider interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}
