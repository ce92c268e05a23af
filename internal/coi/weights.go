// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/tomtom215/vantage/internal/scorecmp"
)

// relevanceSaturation controls how quickly a CoI's weight saturates with
// growing relevance.
const relevanceSaturation = 3

// Weights computes a weight distribution across the CoIs, aligned with the
// input order. Each weight is 1 - exp(-3 * relevance), normalized by the sum
// of all weights. If every CoI is fully decayed the weights are uniform so
// that callers can always divide by their sum.
func Weights(cois []PositiveCoi, horizon time.Duration, now time.Time) []float32 {
	relevances := Relevances(cois, horizon, now)
	if len(relevances) == 0 {
		return relevances
	}

	weights := make([]float32, len(relevances))
	var sum float64
	for i, r := range relevances {
		w := 1 - math.Exp(-relevanceSaturation*float64(r))
		weights[i] = float32(w)
		sum += w
	}

	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		uniform := 1 / float32(len(weights))
		for i := range weights {
			weights[i] = uniform
		}
		return weights
	}

	for i := range weights {
		weights[i] = float32(float64(weights[i]) / sum)
	}
	return weights
}

// WeightedCoi pairs a CoI with its weight.
type WeightedCoi struct {
	Coi    PositiveCoi
	Weight float32
}

// SelectTop returns at most n CoIs ordered by weight descending. Equal
// weights are ordered by id descending so that the selection is
// reproducible. weights must be aligned with cois.
func SelectTop(cois []PositiveCoi, weights []float32, n int) []WeightedCoi {
	if n <= 0 || len(cois) == 0 {
		return nil
	}

	selected := make([]WeightedCoi, 0, len(cois))
	for i := range cois {
		var w float32
		if i < len(weights) {
			w = weights[i]
		}
		selected = append(selected, WeightedCoi{Coi: cois[i], Weight: w})
	}

	slices.SortFunc(selected, func(a, b WeightedCoi) int {
		if c := scorecmp.CompareDesc(a.Weight, b.Weight); c != 0 {
			return c
		}
		return cmp.Compare(b.Coi.ID, a.Coi.ID)
	})

	if len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// NormalizeWeights rescales the weights of the selection to sum to one.
// A selection whose weights sum to zero is given uniform weights.
func NormalizeWeights(selected []WeightedCoi) []WeightedCoi {
	out := make([]WeightedCoi, len(selected))
	copy(out, selected)

	var sum float32
	for _, s := range out {
		if s.Weight > 0 {
			sum += s.Weight
		}
	}
	for i := range out {
		switch {
		case sum > 0 && out[i].Weight > 0:
			out[i].Weight /= sum
		case sum > 0:
			out[i].Weight = 0
		default:
			out[i].Weight = 1 / float32(len(out))
		}
	}
	return out
}
