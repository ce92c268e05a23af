// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package scorecmp

import (
	"math"
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	t.Parallel()
	nan := float32(math.NaN())
	negInf := float32(math.Inf(-1))

	tests := []struct {
		name string
		a, b float32
		want int
	}{
		{"less", 1, 2, -1},
		{"greater", 2, 1, 1},
		{"equal", 1, 1, 0},
		{"NaN below -Inf", nan, negInf, -1},
		{"-Inf above NaN", negInf, nan, 1},
		{"NaN equals NaN", nan, nan, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%f, %f): expected %d, got %d", tt.a, tt.b, tt.want, got)
			}
			if got := CompareDesc(tt.a, tt.b); got != -tt.want {
				t.Errorf("CompareDesc(%f, %f): expected %d, got %d", tt.a, tt.b, -tt.want, got)
			}
		})
	}
}

func TestCompareDesc_NaNSortsLast(t *testing.T) {
	t.Parallel()
	nan := float32(math.NaN())
	scores := []float32{0.2, nan, 0.9, float32(math.Inf(-1)), 0.5}

	slices.SortFunc(scores, CompareDesc)

	want := []float32{0.9, 0.5, 0.2, float32(math.Inf(-1))}
	for i, w := range want {
		if scores[i] != w {
			t.Errorf("Position %d: expected %f, got %f", i, w, scores[i])
		}
	}
	if !math.IsNaN(float64(scores[4])) {
		t.Errorf("Expected NaN last, got %f", scores[4])
	}
}
