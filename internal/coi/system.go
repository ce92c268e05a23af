// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/scorecmp"
)

// System applies the interest model rules to a user's CoIs. It holds no
// per-user state and is safe for concurrent use; callers serialize mutations
// of a single UserInterests value.
type System struct {
	config Config
	clock  Clock
	newID  IDSource
}

// Option customizes a System.
type Option func(*System)

// WithClock sets the clock used by Now.
func WithClock(c Clock) Option {
	return func(s *System) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDSource sets the generator for new CoI ids.
func WithIDSource(src IDSource) Option {
	return func(s *System) {
		if src != nil {
			s.newID = src
		}
	}
}

// NewSystem validates cfg and returns a System.
//
//nolint:gocritic // Config is small and passed by value on purpose
func NewSystem(cfg Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coi config: %w", err)
	}
	s := &System{
		config: cfg,
		clock:  SystemClock{},
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the model configuration.
func (s *System) Config() Config {
	return s.config
}

// Now returns the current time of the configured clock.
func (s *System) Now() time.Time {
	return s.clock.Now()
}

// LogPositiveReaction reinforces the positive CoI closest to e, or appends a
// new one if none is similar enough, and returns the updated slice.
func (s *System) LogPositiveReaction(cois []PositiveCoi, e embedding.Embedding, t time.Time) []PositiveCoi {
	if idx, sim, ok := closestPositive(cois, e); ok && sim >= s.config.Threshold {
		// a shifted point can only fail to normalize if it cancels out
		if point, err := shiftPoint(cois[idx].Point, e, s.config.ShiftFactor); err == nil {
			cois[idx].Point = point
			cois[idx].Stats.ViewCount++
			cois[idx].Stats.LastView = t
			return cois
		}
	}

	return append(cois, PositiveCoi{
		ID:    s.newID(),
		Point: e.Clone(),
		Stats: newStats(t),
	})
}

// LogNegativeReaction reinforces the negative CoI closest to e, or appends a
// new one if none is similar enough, and returns the updated slice.
func (s *System) LogNegativeReaction(cois []NegativeCoi, e embedding.Embedding, t time.Time) []NegativeCoi {
	if idx, sim, ok := closestNegative(cois, e); ok && sim >= s.config.Threshold {
		if point, err := shiftPoint(cois[idx].Point, e, s.config.ShiftFactor); err == nil {
			cois[idx].Point = point
			cois[idx].LastView = t
			return cois
		}
	}

	return append(cois, NegativeCoi{
		ID:       s.newID(),
		Point:    e.Clone(),
		LastView: t,
	})
}

// LogViewTime adds viewed to the view time of the positive CoI closest to e.
// LastView is left untouched. Negative durations count as zero and an empty
// set is a no-op.
func LogViewTime(cois []PositiveCoi, e embedding.Embedding, viewed time.Duration) {
	if viewed < 0 {
		viewed = 0
	}
	if idx, _, ok := closestPositive(cois, e); ok {
		cois[idx].Stats.ViewTime += viewed
	}
}

// Reinforce validates e and records a reaction of the given polarity.
func (s *System) Reinforce(interests *UserInterests, e embedding.Embedding, polarity Polarity, t time.Time) error {
	point, err := s.checkEmbedding(interests, e)
	if err != nil {
		return err
	}

	switch polarity {
	case Positive:
		interests.Positive = s.LogPositiveReaction(interests.Positive, point, t)
	case Negative:
		interests.Negative = s.LogNegativeReaction(interests.Negative, point, t)
	default:
		return fmt.Errorf("unknown reaction polarity %d", int(polarity))
	}
	return nil
}

// RecordViewTime validates e and adds viewed to the closest positive CoI.
func (s *System) RecordViewTime(interests *UserInterests, e embedding.Embedding, viewed time.Duration) error {
	point, err := s.checkEmbedding(interests, e)
	if err != nil {
		return err
	}
	LogViewTime(interests.Positive, point, viewed)
	return nil
}

// checkEmbedding rejects malformed vectors before they reach the CoIs and
// returns a unit length copy.
func (s *System) checkEmbedding(interests *UserInterests, e embedding.Embedding) (embedding.Embedding, error) {
	if err := e.Validate(interests.dimension()); err != nil {
		return nil, err
	}
	return e.Normalize()
}

// dimension returns the dimensionality of the stored CoIs, or 0 if empty.
func (u *UserInterests) dimension() int {
	if len(u.Positive) > 0 {
		return len(u.Positive[0].Point)
	}
	if len(u.Negative) > 0 {
		return len(u.Negative[0].Point)
	}
	return 0
}

// Score computes the interest score of a document embedding. The positive
// contribution is similarity * decay + relevance of the closest positive
// CoI, the negative contribution is similarity * decay of the closest
// negative CoI, and the score is their difference. A missing side contributes
// zero; ok is false if the user has no CoIs at all.
//
// For positive-only interests the score lies in [-1, 2]; with negative CoIs
// it lies in [-2, 3].
func (s *System) Score(interests *UserInterests, e embedding.Embedding, t time.Time) (score float32, ok bool) {
	return scoreWith(interests, Relevances(interests.Positive, s.config.Horizon, t), s.config.Horizon, e, t)
}

// Scores computes the interest score of each embedding. ok is false if the
// user has no CoIs, in which case scores is nil.
func (s *System) Scores(interests *UserInterests, embeddings []embedding.Embedding, t time.Time) (scores []float32, ok bool) {
	if interests.IsEmpty() {
		return nil, false
	}
	relevances := Relevances(interests.Positive, s.config.Horizon, t)
	scores = make([]float32, len(embeddings))
	for i, e := range embeddings {
		scores[i], _ = scoreWith(interests, relevances, s.config.Horizon, e, t)
	}
	return scores, true
}

func scoreWith(interests *UserInterests, relevances []float32, horizon time.Duration, e embedding.Embedding, t time.Time) (float32, bool) {
	var score float32
	found := false

	if idx, sim, ok := closestPositive(interests.Positive, e); ok {
		decay := DecayFactor(horizon, t, interests.Positive[idx].Stats.LastView)
		score += sim*decay + relevances[idx]
		found = true
	}
	if idx, sim, ok := closestNegative(interests.Negative, e); ok {
		decay := DecayFactor(horizon, t, interests.Negative[idx].LastView)
		score -= sim * decay
		found = true
	}
	return score, found
}

// Document is anything that can be ranked by the interest model.
type Document interface {
	DocumentEmbedding() embedding.Embedding
}

// Rank sorts docs by interest score, highest first. Documents with equal
// scores keep their relative order, and without any CoIs the original order
// is kept.
func Rank[D Document](s *System, docs []D, interests *UserInterests, t time.Time) {
	embeddings := make([]embedding.Embedding, len(docs))
	for i := range docs {
		embeddings[i] = docs[i].DocumentEmbedding()
	}
	scores, ok := s.Scores(interests, embeddings, t)
	if !ok {
		return
	}

	type scored struct {
		doc   D
		score float32
	}
	pairs := make([]scored, len(docs))
	for i := range docs {
		pairs[i] = scored{doc: docs[i], score: scores[i]}
	}
	slices.SortStableFunc(pairs, func(a, b scored) int {
		return scorecmp.CompareDesc(a.score, b.score)
	})
	for i := range pairs {
		docs[i] = pairs[i].doc
	}
}
