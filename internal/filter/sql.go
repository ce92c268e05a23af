// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/vantage/internal/models"
)

// SQL translates a filter into a DuckDB boolean expression over a table
// with an id column and a JSON properties column. Values are bound as
// positional arguments. Property ids are restricted to characters that
// need no escaping inside a quoted JSON path, so they are inlined.
//
// A nil filter yields "TRUE".
func SQL(f Filter, idColumn, propertiesColumn string) (string, []any, error) {
	b := sqlBuilder{idColumn: idColumn, propsColumn: propertiesColumn}
	if f == nil {
		return "TRUE", nil, nil
	}
	clause, err := b.build(f)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

type sqlBuilder struct {
	idColumn    string
	propsColumn string
	args        []any
}

func (b *sqlBuilder) build(f Filter) (string, error) {
	switch v := f.(type) {
	case *Compare:
		return b.compare(v)
	case *Combine:
		return b.combine(v)
	case *IDs:
		return b.ids(v), nil
	default:
		return "", fmt.Errorf("%w: unsupported filter type %T", ErrInvalidFilter, f)
	}
}

func (b *sqlBuilder) combine(c *Combine) (string, error) {
	if len(c.Filters) == 0 {
		if c.Op == OpOr {
			return "FALSE", nil
		}
		return "TRUE", nil
	}
	joiner := " AND "
	if c.Op == OpOr {
		joiner = " OR "
	}
	parts := make([]string, 0, len(c.Filters))
	for _, f := range c.Filters {
		part, err := b.build(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func (b *sqlBuilder) ids(i *IDs) string {
	if len(i.IDs) == 0 {
		return "FALSE"
	}
	return fmt.Sprintf("%s IN (%s)", b.idColumn, b.placeholders(len(i.IDs), func(n int) any { return string(i.IDs[n]) }))
}

func (b *sqlBuilder) placeholders(n int, value func(int) any) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
		b.args = append(b.args, value(i))
	}
	return strings.Join(placeholders, ", ")
}

func (b *sqlBuilder) path(field models.PropertyID) string {
	return fmt.Sprintf(`'$."%s"'`, field)
}

func (b *sqlBuilder) arrayPath(field models.PropertyID) string {
	return fmt.Sprintf(`'$."%s"[*]'`, field)
}

func (b *sqlBuilder) compare(c *Compare) (string, error) {
	if err := c.Field.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	scalar := fmt.Sprintf("json_extract_string(%s, %s)", b.propsColumn, b.path(c.Field))
	array := fmt.Sprintf("json_extract_string(%s, %s)", b.propsColumn, b.arrayPath(c.Field))

	switch c.Op {
	case OpEq:
		switch v := c.Value.(type) {
		case bool:
			b.args = append(b.args, strconv.FormatBool(v))
			return fmt.Sprintf("(json_type(%s, %s) = 'BOOLEAN' AND %s = ?)", b.propsColumn, b.path(c.Field), scalar), nil
		case string:
			b.args = append(b.args, v, v)
			return fmt.Sprintf("(%s = ? OR list_contains(%s, ?))", scalar, array), nil
		}
	case OpIn:
		values, ok := c.Value.([]string)
		if !ok {
			break
		}
		if len(values) == 0 {
			return "FALSE", nil
		}
		in := b.placeholders(len(values), func(n int) any { return values[n] })
		list := b.placeholders(len(values), func(n int) any { return values[n] })
		return fmt.Sprintf("(%s IN (%s) OR list_has_any(%s, [%s]))", scalar, in, array, list), nil
	case OpGt, OpGte, OpLt, OpLte:
		op := map[CompareOp]string{OpGt: ">", OpGte: ">=", OpLt: "<", OpLte: "<="}[c.Op]
		switch v := c.Value.(type) {
		case float64:
			b.args = append(b.args, v)
			return fmt.Sprintf("TRY_CAST(%s AS DOUBLE) %s ?", scalar, op), nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return "", fmt.Errorf("%w: %s: invalid date string", ErrInvalidFilter, c.Field)
			}
			b.args = append(b.args, t.UTC())
			return fmt.Sprintf("TRY_CAST(%s AS TIMESTAMPTZ) %s ?", scalar, op), nil
		}
	}
	return "", fmt.Errorf("%w: %s %s has unsupported value %T", ErrInvalidFilter, c.Field, c.Op, c.Value)
}
