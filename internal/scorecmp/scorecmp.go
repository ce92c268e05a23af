// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package scorecmp orders float32 scores with a total order that keeps NaN
// out of the way. It has no dependencies so that every ranking package can
// share it.
package scorecmp

import "math"

// Compare is a total order on float32 where NaN sorts below every other
// value, including negative infinity. It returns -1, 0 or +1 and is
// suitable for slices.SortFunc.
//
// NaN never appears on a healthy path: decay, relevance and fusion clamp
// their outputs. A NaN reaching a sort is a logic bug upstream and is only
// ordered deterministically here so that it cannot corrupt the sort.
func Compare(a, b float32) int {
	aNaN := math.IsNaN(float64(a))
	bNaN := math.IsNaN(float64(b))
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareDesc is the descending mirror of Compare. NaN sorts last.
func CompareDesc(a, b float32) int {
	return Compare(b, a)
}
