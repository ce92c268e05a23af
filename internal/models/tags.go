// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

// TagWeights counts how often a user reacted positively to documents
// carrying each tag.
type TagWeights map[DocumentTag]int

// Add increments the weight of every tag by one.
func (w TagWeights) Add(tags []DocumentTag) {
	for _, tag := range tags {
		w[tag]++
	}
}

// Merge adds the weights of other.
func (w TagWeights) Merge(other TagWeights) {
	for tag, n := range other {
		w[tag] += n
	}
}

// Total returns the sum of all weights.
func (w TagWeights) Total() int {
	total := 0
	for _, n := range w {
		total += n
	}
	return total
}

// Score returns the share of the total weight carried by the given tags.
// It reports false when there are no weights at all.
func (w TagWeights) Score(tags []DocumentTag) (float32, bool) {
	total := w.Total()
	if total == 0 {
		return 0, false
	}
	sum := 0
	for _, tag := range tags {
		sum += w[tag]
	}
	return float32(float64(sum) / float64(total)), true
}
