// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"math"
	"time"
)

// decayPerSecond is the exponential decay rate of -0.1 per day.
const decayPerSecond = -0.1 / (24 * 60 * 60)

// DecayFactor computes how much of a CoI's relevance is left after the time
// elapsed since lastView, relative to horizon. The result is in [0, 1]:
// 1 for no elapsed time, 0 once the age reaches the horizon, and
// non-increasing in between. A lastView in the future (clock skew) is treated
// as no elapsed time. A zero horizon decays everything immediately.
func DecayFactor(horizon time.Duration, now, lastView time.Time) float32 {
	if horizon <= 0 {
		return 0
	}
	if lastView.After(now) {
		return 1
	}

	h := math.Exp(decayPerSecond * horizon.Seconds())
	d := math.Exp(decayPerSecond * now.Sub(lastView).Seconds())

	// epsilon keeps the denominator away from zero for tiny horizons
	factor := (h - d) / (h - 1 - epsilon)
	return float32(math.Min(1, math.Max(0, factor)))
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16

// Relevances computes one unnormalized relevance per CoI from its view count
// and view time relative to the other CoIs, scaled by its decay factor. Each
// value is in [0, 2] for well formed stats and always finite and
// non-negative.
func Relevances(cois []PositiveCoi, horizon time.Duration, now time.Time) []float32 {
	if len(cois) == 0 {
		return []float32{}
	}

	// sums are kept in float64 so that extreme stats cannot overflow
	var counts, times float64
	for i := range cois {
		counts += float64(cois[i].Stats.ViewCount)
		times += cois[i].Stats.ViewTime.Seconds()
	}
	if counts == 0 {
		// every view count is zero, any divisor works
		counts = 1
	}
	if times == 0 {
		times = 1
	}

	out := make([]float32, len(cois))
	for i := range cois {
		stats := cois[i].Stats
		fraction := float64(stats.ViewCount)/counts + stats.ViewTime.Seconds()/times
		decay := float64(DecayFactor(horizon, now, stats.LastView))
		out[i] = clampRelevance(fraction * decay)
	}
	return out
}

func clampRelevance(v float64) float32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxFloat32 {
		return math.MaxFloat32
	}
	return float32(v)
}
