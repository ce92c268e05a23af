// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"fmt"
	"strings"
)

// Polarity is the direction of a user reaction.
type Polarity int

const (
	// Positive marks a document the user engaged with.
	Positive Polarity = iota + 1
	// Negative marks a document the user rejected.
	Negative
)

// String returns the wire name of the polarity.
func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("polarity(%d)", int(p))
	}
}

// ParsePolarity parses "positive" or "negative" (case-insensitive).
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return Positive, nil
	case "negative":
		return Negative, nil
	default:
		return 0, fmt.Errorf("unknown reaction polarity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Polarity) MarshalText() ([]byte, error) {
	if p != Positive && p != Negative {
		return nil, fmt.Errorf("unknown reaction polarity %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Polarity) UnmarshalText(text []byte) error {
	parsed, err := ParsePolarity(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UserInterests holds all CoIs of one user. Ids are unique within each set.
// It is created empty for a new user and persisted in full.
type UserInterests struct {
	Positive []PositiveCoi `json:"positive"`
	Negative []NegativeCoi `json:"negative"`
}

// HasEnough reports whether there are enough CoIs for interest based
// ranking to be meaningful.
//
//nolint:gocritic // Config is small and passed by value on purpose
func (u *UserInterests) HasEnough(cfg Config) bool {
	return len(u.Positive) >= cfg.MinPositiveCois && len(u.Negative) >= cfg.MinNegativeCois
}

// IsEmpty reports whether the user has no CoIs at all.
func (u *UserInterests) IsEmpty() bool {
	return len(u.Positive) == 0 && len(u.Negative) == 0
}

// Clone returns a deep copy.
func (u *UserInterests) Clone() UserInterests {
	out := UserInterests{
		Positive: make([]PositiveCoi, len(u.Positive)),
		Negative: make([]NegativeCoi, len(u.Negative)),
	}
	for i, c := range u.Positive {
		c.Point = c.Point.Clone()
		out.Positive[i] = c
	}
	for i, c := range u.Negative {
		c.Point = c.Point.Clone()
		out.Negative[i] = c
	}
	return out
}
