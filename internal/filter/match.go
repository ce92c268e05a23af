// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package filter

import (
	"slices"
	"time"

	"github.com/tomtom215/vantage/internal/models"
)

// Matches reports whether the document property satisfies the comparison.
// Keyword arrays match $eq and $in when any element matches. Missing
// properties never match.
func (c *Compare) Matches(doc *models.Document) bool {
	prop, ok := doc.Properties[c.Field]
	if !ok || prop == nil {
		return false
	}

	switch c.Op {
	case OpEq:
		if b, ok := c.Value.(bool); ok {
			pb, isBool := prop.(bool)
			return isBool && pb == b
		}
		s, _ := c.Value.(string)
		return slices.Contains(keywords(prop), s)
	case OpIn:
		values, _ := c.Value.([]string)
		for _, kw := range keywords(prop) {
			if slices.Contains(values, kw) {
				return true
			}
		}
		return false
	default:
		cmp, ok := compareRange(prop, c.Value)
		if !ok {
			return false
		}
		switch c.Op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		case OpLte:
			return cmp <= 0
		}
		return false
	}
}

// Matches reports whether all (for $and) or any (for $or) filters match.
// An empty $and matches every document, an empty $or none.
func (c *Combine) Matches(doc *models.Document) bool {
	if c.Op == OpOr {
		for _, f := range c.Filters {
			if f.Matches(doc) {
				return true
			}
		}
		return false
	}
	for _, f := range c.Filters {
		if !f.Matches(doc) {
			return false
		}
	}
	return true
}

// Matches reports whether the document id is listed.
func (i *IDs) Matches(doc *models.Document) bool {
	return slices.Contains(i.IDs, doc.ID)
}

// Match evaluates an optional filter. A nil filter matches everything.
func Match(f Filter, doc *models.Document) bool {
	return f == nil || f.Matches(doc)
}

func keywords(prop any) []string {
	switch v := prop.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// compareRange compares a property with a range operand. Numbers compare
// with numbers and RFC3339 dates with dates; anything else is
// incomparable.
func compareRange(prop, operand any) (int, bool) {
	switch want := operand.(type) {
	case float64:
		got, ok := toFloat(prop)
		if !ok {
			return 0, false
		}
		switch {
		case got < want:
			return -1, true
		case got > want:
			return 1, true
		}
		return 0, true
	case string:
		wantTime, err := time.Parse(time.RFC3339, want)
		if err != nil {
			return 0, false
		}
		s, ok := prop.(string)
		if !ok {
			return 0, false
		}
		gotTime, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, false
		}
		return gotTime.Compare(wantTime), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
