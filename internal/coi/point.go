// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/scorecmp"
)

// ID identifies a center of interest. It is immutable once assigned.
type ID string

// NewID returns a random (v4) identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Stats are the engagement statistics of a positive CoI.
type Stats struct {
	// ViewCount is the number of reactions that reinforced the CoI. Starts at 1.
	ViewCount int `json:"view_count"`

	// ViewTime is the accumulated reading time.
	ViewTime time.Duration `json:"view_time"`

	// LastView is the time of the most recent reaction.
	LastView time.Time `json:"last_view"`
}

func newStats(t time.Time) Stats {
	return Stats{ViewCount: 1, ViewTime: 0, LastView: t}
}

// PositiveCoi is a cluster of documents the user liked.
type PositiveCoi struct {
	ID    ID                  `json:"id"`
	Point embedding.Embedding `json:"point"`
	Stats Stats               `json:"stats"`
}

// NegativeCoi is a cluster of documents the user disliked. Negative signals
// are binary so only the time of the last reaction is kept.
type NegativeCoi struct {
	ID       ID                  `json:"id"`
	Point    embedding.Embedding `json:"point"`
	LastView time.Time           `json:"last_view"`
}

// shiftPoint moves point towards target by factor and renormalizes.
func shiftPoint(point, target embedding.Embedding, factor float32) (embedding.Embedding, error) {
	return point.Scale(1 - factor).Add(target.Scale(factor)).Normalize()
}

// closestIndex returns the index of the point most similar to e together
// with the similarity. ok is false for an empty set.
func closestIndex(n int, pointAt func(int) embedding.Embedding, e embedding.Embedding) (idx int, similarity float32, ok bool) {
	for i := 0; i < n; i++ {
		sim := e.Dot(pointAt(i))
		if !ok || scorecmp.Compare(sim, similarity) > 0 {
			idx, similarity, ok = i, sim, true
		}
	}
	return idx, similarity, ok
}

func closestPositive(cois []PositiveCoi, e embedding.Embedding) (int, float32, bool) {
	return closestIndex(len(cois), func(i int) embedding.Embedding { return cois[i].Point }, e)
}

func closestNegative(cois []NegativeCoi, e embedding.Embedding) (int, float32, bool) {
	return closestIndex(len(cois), func(i int) embedding.Embedding { return cois[i].Point }, e)
}
