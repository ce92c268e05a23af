// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/vantage/internal/embedding"
)

// Document limits.
const (
	MaxTagsPerDocument     = 10
	MaxPropertyArrayValues = 100
)

// ErrInvalidProperty is returned for property values of unsupported type or
// size.
var ErrInvalidProperty = errors.New("invalid document property")

// Properties are arbitrary values attached to a document. Supported value
// types are bool, float64, string, []string and nil.
type Properties map[PropertyID]any

// Validate checks property ids and value types.
func (p Properties) Validate() error {
	for id, value := range p {
		if err := id.Validate(); err != nil {
			return err
		}
		if err := validateProperty(id, value); err != nil {
			return err
		}
	}
	return nil
}

func validateProperty(id PropertyID, value any) error {
	switch v := value.(type) {
	case nil, bool, float64, float32, int, int64:
		return nil
	case string:
		if strings.IndexByte(v, 0) >= 0 {
			return fmt.Errorf("%w: %s contains NUL", ErrInvalidProperty, id)
		}
		return nil
	case []string:
		return validatePropertyArray(id, len(v), func(i int) (string, bool) { return v[i], true })
	case []any:
		return validatePropertyArray(id, len(v), func(i int) (string, bool) {
			s, ok := v[i].(string)
			return s, ok
		})
	default:
		return fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidProperty, id, value)
	}
}

func validatePropertyArray(id PropertyID, n int, at func(int) (string, bool)) error {
	if n > MaxPropertyArrayValues {
		return fmt.Errorf("%w: %s has %d values, max %d", ErrInvalidProperty, id, n, MaxPropertyArrayValues)
	}
	for i := 0; i < n; i++ {
		s, ok := at(i)
		if !ok {
			return fmt.Errorf("%w: %s arrays may only contain strings", ErrInvalidProperty, id)
		}
		if strings.IndexByte(s, 0) >= 0 {
			return fmt.Errorf("%w: %s contains NUL", ErrInvalidProperty, id)
		}
	}
	return nil
}

// Document is an ingested document as seen by the personalization core.
type Document struct {
	ID         DocumentID          `json:"id"`
	Embedding  embedding.Embedding `json:"embedding"`
	Tags       []DocumentTag       `json:"tags,omitempty"`
	Properties Properties          `json:"properties,omitempty"`
}

// DocumentEmbedding returns the document embedding.
func (d *Document) DocumentEmbedding() embedding.Embedding { return d.Embedding }

// Validate checks the id, tags, properties and embedding of the document.
func (d *Document) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return err
	}
	if len(d.Tags) > MaxTagsPerDocument {
		return fmt.Errorf("%w: document %s has %d tags, max %d", ErrInvalidTag, d.ID, len(d.Tags), MaxTagsPerDocument)
	}
	for _, tag := range d.Tags {
		if err := tag.Validate(); err != nil {
			return err
		}
	}
	if err := d.Properties.Validate(); err != nil {
		return err
	}
	return d.Embedding.Validate(0)
}

// PublicationDate returns the publication_date property if it is set to an
// RFC3339 string.
func (d *Document) PublicationDate() (time.Time, bool) {
	raw, ok := d.Properties[PublicationDateProperty].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PublicationDateProperty is the property consulted by published-after
// filtering.
const PublicationDateProperty PropertyID = "publication_date"

// PersonalizedDocument is a retrieval result.
type PersonalizedDocument struct {
	ID         DocumentID          `json:"id"`
	Score      float32             `json:"score"`
	Embedding  embedding.Embedding `json:"-"`
	Tags       []DocumentTag       `json:"tags,omitempty"`
	Properties Properties          `json:"properties,omitempty"`
}

// DocumentEmbedding returns the document embedding.
func (d PersonalizedDocument) DocumentEmbedding() embedding.Embedding { return d.Embedding }

// Personalized converts the document into a result with the given score.
func (d *Document) Personalized(score float32) PersonalizedDocument {
	return PersonalizedDocument{
		ID:         d.ID,
		Score:      score,
		Embedding:  d.Embedding,
		Tags:       d.Tags,
		Properties: d.Properties,
	}
}
