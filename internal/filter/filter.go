// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package filter

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vantage/internal/models"
)

// ErrInvalidFilter is wrapped by every decoding and validation error.
var ErrInvalidFilter = errors.New("invalid filter")

// Limits of the filter language.
const (
	MaxValuesPerIn           = 500
	MaxFiltersPerCombination = 10
	MaxCombinationDepth      = 2
)

// CompareOp is a comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpEq  CompareOp = "$eq"
	OpIn  CompareOp = "$in"
	OpGt  CompareOp = "$gt"
	OpGte CompareOp = "$gte"
	OpLt  CompareOp = "$lt"
	OpLte CompareOp = "$lte"
)

func (op CompareOp) valid() bool {
	switch op {
	case OpEq, OpIn, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

func (op CompareOp) isRange() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

// CombineOp is a logical combinator.
type CombineOp string

// Logical combinators.
const (
	OpAnd CombineOp = "$and"
	OpOr  CombineOp = "$or"
)

const idsKey = "$ids"

// Filter is a predicate over document properties. It is one of *Compare,
// *Combine or *IDs.
type Filter interface {
	// Matches evaluates the filter against a document.
	Matches(doc *models.Document) bool
	MarshalJSON() ([]byte, error)

	depthOK(maxDepth int) bool
}

// Compare compares a single property with a value.
//
// Value types per operator: $eq takes a string or bool, $in a []string and
// the range operators a float64 or an RFC3339 string.
type Compare struct {
	Op    CompareOp
	Field models.PropertyID
	Value any
}

// Combine joins filters with $and or $or.
type Combine struct {
	Op      CombineOp
	Filters []Filter
}

// IDs restricts results to the listed documents.
type IDs struct {
	IDs []models.DocumentID
}

func (*Compare) depthOK(int) bool { return true }
func (*IDs) depthOK(int) bool     { return true }

func (c *Combine) depthOK(maxDepth int) bool {
	if maxDepth <= 0 {
		return false
	}
	for _, f := range c.Filters {
		if !f.depthOK(maxDepth - 1) {
			return false
		}
	}
	return true
}

// Parse decodes a JSON filter.
func Parse(data []byte) (Filter, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: expected a json object: %v", ErrInvalidFilter, err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one key, got %d", ErrInvalidFilter, len(raw))
	}

	key, value := single(raw)
	switch key {
	case string(OpAnd), string(OpOr):
		return parseCombine(CombineOp(key), value)
	case idsKey:
		return parseIDs(value)
	default:
		return parseCompare(key, value)
	}
}

func single(m map[string]json.RawMessage) (string, json.RawMessage) {
	for k, v := range m {
		return k, v
	}
	return "", nil
}

func parseCombine(op CombineOp, data json.RawMessage) (*Combine, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s expects an array: %v", ErrInvalidFilter, op, err)
	}
	if len(items) > MaxFiltersPerCombination {
		return nil, fmt.Errorf("%w: %s has %d filters, max %d", ErrInvalidFilter, op, len(items), MaxFiltersPerCombination)
	}

	combine := &Combine{Op: op, Filters: make([]Filter, 0, len(items))}
	for _, item := range items {
		f, err := Parse(item)
		if err != nil {
			return nil, err
		}
		combine.Filters = append(combine.Filters, f)
	}
	if !combine.depthOK(MaxCombinationDepth) {
		return nil, fmt.Errorf("%w: more than %d nested combinations", ErrInvalidFilter, MaxCombinationDepth)
	}
	return combine, nil
}

func parseIDs(data json.RawMessage) (*IDs, error) {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: $ids expects a string array: %v", ErrInvalidFilter, err)
	}
	if len(values) > MaxValuesPerIn {
		return nil, fmt.Errorf("%w: $ids must contain 0..=%d ids, got %d", ErrInvalidFilter, MaxValuesPerIn, len(values))
	}
	ids := &IDs{IDs: make([]models.DocumentID, 0, len(values))}
	for _, v := range values {
		id, err := models.NewDocumentID(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		ids.IDs = append(ids.IDs, id)
	}
	return ids, nil
}

func parseCompare(field string, data json.RawMessage) (*Compare, error) {
	id, err := models.NewPropertyID(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s expects an operator object: %v", ErrInvalidFilter, field, err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%w: %s expects exactly one operator, got %d", ErrInvalidFilter, field, len(raw))
	}

	key, value := single(raw)
	op := CompareOp(key)
	if !op.valid() {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, key)
	}
	v, err := decodeValue(op, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalidFilter, field, op, err)
	}
	return &Compare{Op: op, Field: id, Value: v}, nil
}

func decodeValue(op CompareOp, data json.RawMessage) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}

	switch {
	case op == OpEq:
		switch v := value.(type) {
		case string, bool:
			return v, nil
		}
		return nil, fmt.Errorf("expected string or bool, got %s", describe(value))

	case op == OpIn:
		values, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected string array, got %s", describe(value))
		}
		if len(values) > MaxValuesPerIn {
			return nil, fmt.Errorf("%d values, max %d", len(values), MaxValuesPerIn)
		}
		out := make([]string, 0, len(values))
		for _, item := range values {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("only string arrays are allowed")
			}
			out = append(out, s)
		}
		return out, nil

	case op.isRange():
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return nil, errors.New("invalid date string")
			}
			return v, nil
		}
		return nil, fmt.Errorf("expected number or RFC3339 date, got %s", describe(value))
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return "object"
	}
}

// MarshalJSON encodes the comparison in filter syntax.
func (c *Compare) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]any{
		string(c.Field): {string(c.Op): c.Value},
	})
}

// MarshalJSON encodes the combination in filter syntax.
func (c *Combine) MarshalJSON() ([]byte, error) {
	filters := c.Filters
	if filters == nil {
		filters = []Filter{}
	}
	return json.Marshal(map[string][]Filter{string(c.Op): filters})
}

// MarshalJSON encodes the id restriction in filter syntax.
func (i *IDs) MarshalJSON() ([]byte, error) {
	ids := i.IDs
	if ids == nil {
		ids = []models.DocumentID{}
	}
	return json.Marshal(map[string][]models.DocumentID{idsKey: ids})
}

// Expr holds an optional filter in request payloads. A JSON null or an
// absent field leaves it empty.
type Expr struct {
	Filter Filter
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expr) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		e.Filter = nil
		return nil
	}
	f, err := Parse(data)
	if err != nil {
		return err
	}
	e.Filter = f
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Expr) MarshalJSON() ([]byte, error) {
	if e.Filter == nil {
		return []byte("null"), nil
	}
	return e.Filter.MarshalJSON()
}

// WithPublishedAfter restricts f to documents whose publication_date is at
// or after t. A nil t returns f unchanged. An existing $and gains one more
// clause, anything else is wrapped in a new $and.
func WithPublishedAfter(f Filter, t *time.Time) Filter {
	if t == nil {
		return f
	}
	published := &Compare{
		Op:    OpGte,
		Field: models.PublicationDateProperty,
		Value: t.UTC().Format(time.RFC3339),
	}
	if f == nil {
		return published
	}
	if c, ok := f.(*Combine); ok && c.Op == OpAnd {
		filters := make([]Filter, 0, len(c.Filters)+1)
		filters = append(filters, c.Filters...)
		return &Combine{Op: OpAnd, Filters: append(filters, published)}
	}
	return &Combine{Op: OpAnd, Filters: []Filter{f, published}}
}
