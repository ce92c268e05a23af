// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vantage/internal/embedding"
)

func TestDocumentValidate(t *testing.T) {
	t.Parallel()

	valid := func() Document {
		return Document{
			ID:        "doc-1",
			Embedding: embedding.Embedding{0.6, 0.8},
			Tags:      []DocumentTag{"news", "sports"},
			Properties: Properties{
				"publication_date": "2026-01-02T03:04:05Z",
				"paywalled":        false,
				"views":            float64(12),
				"authors":          []any{"a", "b"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr error
	}{
		{"valid", func(d *Document) {}, nil},
		{"bad id", func(d *Document) { d.ID = "bad id" }, ErrInvalidDocumentID},
		{"too many tags", func(d *Document) {
			d.Tags = make([]DocumentTag, MaxTagsPerDocument+1)
			for i := range d.Tags {
				d.Tags[i] = "t"
			}
		}, ErrInvalidTag},
		{"empty tag", func(d *Document) { d.Tags = []DocumentTag{""} }, ErrInvalidTag},
		{"bad property id", func(d *Document) { d.Properties["a.b"] = true }, ErrInvalidPropertyID},
		{"object property", func(d *Document) { d.Properties["obj"] = map[string]any{} }, ErrInvalidProperty},
		{"mixed array", func(d *Document) { d.Properties["arr"] = []any{"a", 1.0} }, ErrInvalidProperty},
		{"nan embedding", func(d *Document) { d.Embedding = embedding.Embedding{float32(nan())} }, embedding.ErrInvalidEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := valid()
			tt.mutate(&doc)
			err := doc.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestDocumentPublicationDate(t *testing.T) {
	t.Parallel()

	doc := Document{ID: "d", Properties: Properties{"publication_date": "2026-01-02T03:04:05Z"}}
	got, ok := doc.PublicationDate()
	if !ok {
		t.Fatal("Expected publication date to be present")
	}
	if want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	doc.Properties["publication_date"] = "yesterday"
	if _, ok := doc.PublicationDate(); ok {
		t.Error("Expected unparsable publication date to be absent")
	}
}

func TestDocumentJSON(t *testing.T) {
	t.Parallel()

	input := `{"id":"doc-1","embedding":[1,0],"tags":["a"],"properties":{"lang":"en","score":3}}`
	var doc Document
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("Failed to unmarshal document: %v", err)
	}
	if doc.ID != "doc-1" || len(doc.Embedding) != 2 || doc.Tags[0] != "a" {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("Expected decoded document to be valid, got %v", err)
	}

	result := doc.Personalized(0.5)
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to marshal result: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if _, ok := decoded["embedding"]; ok {
		t.Error("Expected embedding to be omitted from results")
	}
	if decoded["score"] != 0.5 {
		t.Errorf("Expected score 0.5, got %v", decoded["score"])
	}
}

func TestTagWeights(t *testing.T) {
	t.Parallel()

	weights := TagWeights{}
	weights.Add([]DocumentTag{"a", "b"})
	weights.Add([]DocumentTag{"a"})
	weights.Merge(TagWeights{"c": 1})

	if weights.Total() != 4 {
		t.Errorf("Expected total 4, got %d", weights.Total())
	}
	score, ok := weights.Score([]DocumentTag{"a", "c"})
	if !ok || score != 0.75 {
		t.Errorf("Expected score 0.75, got %v (ok=%v)", score, ok)
	}
	if _, ok := (TagWeights{}).Score([]DocumentTag{"a"}); ok {
		t.Error("Expected no score for empty weights")
	}
}
