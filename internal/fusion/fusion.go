// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package fusion

import (
	"cmp"
	"slices"

	"github.com/tomtom215/vantage/internal/scorecmp"
)

// DefaultRRFK is the default smoothing constant of reciprocal rank fusion.
// Larger values flatten the difference between top and lower ranks.
const DefaultRRFK float32 = 60

// Scores maps a key (usually a document id) to a score.
type Scores[K cmp.Ordered] map[K]float32

// Entry is a single key and score pair.
type Entry[K cmp.Ordered] struct {
	Key   K
	Score float32
}

// Weighted is a score map together with the weight of its source.
type Weighted[K cmp.Ordered] struct {
	Weight float32
	Scores Scores[K]
}

// Sorted returns the entries ordered by score descending, ties broken by key
// descending. The order is total, so repeated calls return the same order.
func Sorted[K cmp.Ordered](scores Scores[K]) []Entry[K] {
	entries := make([]Entry[K], 0, len(scores))
	for k, s := range scores {
		entries = append(entries, Entry[K]{Key: k, Score: s})
	}
	slices.SortFunc(entries, func(a, b Entry[K]) int {
		if c := scorecmp.CompareDesc(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Key, a.Key)
	})
	return entries
}

// RRFScore is the contribution of an entry at 0-based rank rank0.
func RRFScore(k float32, rank0 int, weight float32) float32 {
	return weight / (k + float32(rank0) + 1)
}

// RRFInto ranks scores and adds each key's reciprocal rank contribution to
// into.
func RRFInto[K cmp.Ordered](k, weight float32, scores Scores[K], into Scores[K]) {
	for rank0, e := range Sorted(scores) {
		into[e.Key] += RRFScore(k, rank0, weight)
	}
}

// RRF fuses the weighted score maps with reciprocal rank fusion. The result
// does not depend on the order of the inputs.
func RRF[K cmp.Ordered](k float32, inputs ...Weighted[K]) Scores[K] {
	out := make(Scores[K])
	for _, in := range inputs {
		RRFInto(k, in.Weight, in.Scores, out)
	}
	return out
}

// Normalize divides every score by the maximum score. A map whose maximum
// is zero is returned unchanged.
func Normalize[K cmp.Ordered](scores Scores[K]) Scores[K] {
	maxScore, ok := maxOf(scores)
	if !ok || maxScore == 0 {
		return scores
	}
	for k := range scores {
		scores[k] /= maxScore
	}
	return scores
}

// NormalizeIfMaxGT1 divides every score by the maximum score if it exceeds
// one, leaving scores already in range untouched.
func NormalizeIfMaxGT1[K cmp.Ordered](scores Scores[K]) Scores[K] {
	maxScore, _ := maxOf(scores)
	maxScore = max(maxScore, 1)
	for k := range scores {
		scores[k] /= maxScore
	}
	return scores
}

func maxOf[K cmp.Ordered](scores Scores[K]) (float32, bool) {
	var best float32
	found := false
	for _, s := range scores {
		if !found || scorecmp.Compare(s, best) > 0 {
			best, found = s, true
		}
	}
	return best, found
}

// MergeAverageDuplicatesOnly adds the entries of b to a. Keys present in
// both maps get the average of the two scores.
func MergeAverageDuplicatesOnly[K cmp.Ordered](a, b Scores[K]) Scores[K] {
	if a == nil {
		a = make(Scores[K], len(b))
	}
	for k, s := range b {
		if existing, ok := a[k]; ok {
			a[k] = (existing + s) / 2
		} else {
			a[k] = s
		}
	}
	return a
}

// MergeWeighted multiplies each map by its weight and sums the scores per
// key.
func MergeWeighted[K cmp.Ordered](inputs ...Weighted[K]) Scores[K] {
	out := make(Scores[K])
	for _, in := range inputs {
		for k, s := range in.Scores {
			out[k] += s * in.Weight
		}
	}
	return out
}

// TakeHighestN returns the n entries with the highest (score, key), as a
// new map. Maps with at most n entries are returned as they are.
func TakeHighestN[K cmp.Ordered](n int, scores Scores[K]) Scores[K] {
	if len(scores) <= n {
		return scores
	}
	out := make(Scores[K], max(n, 0))
	for _, e := range Sorted(scores)[:max(n, 0)] {
		out[e.Key] = e.Score
	}
	return out
}
