// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"errors"
	"fmt"
	"time"
)

// Day is the unit the decay model and the persisted horizon are expressed in.
const Day = 24 * time.Hour

// Configuration errors returned by Config.Validate.
var (
	ErrInvalidShiftFactor = errors.New("invalid coi shift factor, expected value from the unit interval")
	ErrInvalidThreshold   = errors.New("invalid coi threshold, expected value from the cosine similarity range [-1, 1]")
	ErrInvalidMinPositive = errors.New("invalid minimum number of positive cois, expected positive value")
	ErrInvalidHorizon     = errors.New("invalid coi horizon, expected non-negative duration")
)

// Config holds the interest model parameters.
type Config struct {
	// ShiftFactor is the fraction by which a reinforced CoI moves towards
	// the new embedding. Range: [0, 1]. Default: 0.1
	ShiftFactor float32 `koanf:"shift_factor" json:"shift_factor"`

	// Threshold is the minimum similarity for an embedding to reinforce an
	// existing CoI instead of creating a new one. Range: [-1, 1]. Default: 0.67
	Threshold float32 `koanf:"threshold" json:"threshold"`

	// MinPositiveCois is the number of positive CoIs required before
	// interest based ranking is used. Default: 2
	MinPositiveCois int `koanf:"min_positive_cois" json:"min_positive_cois"`

	// MinNegativeCois is the number of negative CoIs required before
	// interest based ranking is used. Default: 0
	MinNegativeCois int `koanf:"min_negative_cois" json:"min_negative_cois"`

	// Horizon is the age at which a CoI stops contributing relevance.
	// Default: 30 days
	Horizon time.Duration `koanf:"horizon" json:"horizon"`
}

// DefaultConfig returns the default interest model configuration.
func DefaultConfig() Config {
	return Config{
		ShiftFactor:     0.1,
		Threshold:       0.67,
		MinPositiveCois: 2,
		MinNegativeCois: 0,
		Horizon:         30 * Day,
	}
}

// Validate checks that every parameter is within its allowed range.
//
//nolint:gocritic // Config is small and passed by value on purpose
func (c Config) Validate() error {
	if !(c.ShiftFactor >= 0 && c.ShiftFactor <= 1) {
		return fmt.Errorf("%w: got %f", ErrInvalidShiftFactor, c.ShiftFactor)
	}
	if !(c.Threshold >= -1 && c.Threshold <= 1) {
		return fmt.Errorf("%w: got %f", ErrInvalidThreshold, c.Threshold)
	}
	if c.MinPositiveCois <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMinPositive, c.MinPositiveCois)
	}
	if c.MinNegativeCois < 0 {
		return fmt.Errorf("invalid minimum number of negative cois: got %d", c.MinNegativeCois)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidHorizon, c.Horizon)
	}
	return nil
}

// HorizonDays returns the horizon in whole days, rounded down.
//
//nolint:gocritic // Config is small and passed by value on purpose
func (c Config) HorizonDays() int {
	return int(c.Horizon / Day)
}
