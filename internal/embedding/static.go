// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// ErrUnknownText is returned by StaticProvider for texts without a vector.
var ErrUnknownText = errors.New("no embedding for text")

// StaticProvider looks embeddings up by exact text. Vectors are normalized
// on construction.
type StaticProvider struct {
	vectors map[string]Embedding
}

// NewStaticProvider validates and normalizes vectors.
func NewStaticProvider(vectors map[string][]float32) (*StaticProvider, error) {
	p := &StaticProvider{vectors: make(map[string]Embedding, len(vectors))}
	for text, values := range vectors {
		e, err := New(values)
		if err != nil {
			return nil, fmt.Errorf("embedding for %q: %w", text, err)
		}
		p.vectors[text] = e
	}
	return p, nil
}

// LoadStaticProvider reads a JSON object mapping each text to a vector or
// to the per-token vectors of an encoder, which are reduced with pooling.
//
//	{"cats": [0.6, 0.8], "dogs": [[0, 1], [0.2, 0.9]]}
func LoadStaticProvider(r io.Reader, pooling Pooling) (*StaticProvider, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode vectors: %w", err)
	}
	vectors := make(map[string][]float32, len(raw))
	for text, msg := range raw {
		v, err := decodeVector(msg, pooling)
		if err != nil {
			return nil, fmt.Errorf("embedding for %q: %w", text, err)
		}
		vectors[text] = v
	}
	return NewStaticProvider(vectors)
}

func decodeVector(msg json.RawMessage, pooling Pooling) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(msg, &vector); err == nil {
		return vector, nil
	}
	var tokens [][]float32
	if err := json.Unmarshal(msg, &tokens); err != nil {
		return nil, fmt.Errorf("want a vector or a token matrix: %w", err)
	}
	return pooling.Pool(tokens)
}

// Embed implements Provider.
func (p *StaticProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := p.vectors[text]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownText, text)
	}
	return e.Clone(), nil
}

// Texts returns the known texts in sorted order.
func (p *StaticProvider) Texts() []string {
	texts := make([]string, 0, len(p.vectors))
	for text := range p.vectors {
		texts = append(texts, text)
	}
	sort.Strings(texts)
	return texts
}
