// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"cmp"
	"slices"
	"time"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/fusion"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/scorecmp"
)

// interestScores returns the interest score of each document, or false if
// the user has no CoIs.
func interestScores(sys *coi.System, docs []models.PersonalizedDocument, interests *coi.UserInterests, t time.Time) ([]float32, bool) {
	embeddings := make([]embedding.Embedding, len(docs))
	for i := range docs {
		embeddings[i] = docs[i].Embedding
	}
	return sys.Scores(interests, embeddings, t)
}

// tagScores returns each document's share of the user's tag weight, or
// false if the user has no tag weights.
func tagScores(docs []models.PersonalizedDocument, tags models.TagWeights) ([]float32, bool) {
	if tags.Total() == 0 {
		return nil, false
	}
	scores := make([]float32, len(docs))
	for i := range docs {
		scores[i], _ = tags.Score(docs[i].Tags)
	}
	return scores, true
}

// rankPositions returns the 1-based position of each index when ordered by
// score descending. Equal scores keep input order; missing scores count as 0.
func rankPositions(n int, scores []float32) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	score := func(i int) float32 {
		if i < len(scores) {
			return scores[i]
		}
		return 0
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return scorecmp.CompareDesc(score(a), score(b))
	})
	positions := make([]int, n)
	for pos, idx := range order {
		positions[idx] = pos + 1
	}
	return positions
}

// Rerank orders docs by a blend of their interest rank and tag rank. Each
// rank position p becomes 1/p and the final score is
// ratio*interest + (1-ratio)*tag. Ties are broken by the interest order when
// ratio >= 0.5, by the tag order otherwise. The ratio is clamped to [0, 1].
// docs are reordered in place, their Score set to the blended score, and
// the slice is returned.
func Rerank(sys *coi.System, docs []models.PersonalizedDocument, interests *coi.UserInterests, tags models.TagWeights, ratio float32, t time.Time) []models.PersonalizedDocument {
	start := time.Now()
	defer func() { metrics.RecordRerank(time.Since(start)) }()

	ratio = min(max(ratio, 0), 1)
	n := len(docs)
	if n == 0 {
		return docs
	}

	iScores, _ := interestScores(sys, docs, interests, t)
	tScores, _ := tagScores(docs, tags)
	interestPos := rankPositions(n, iScores)
	tagPos := rankPositions(n, tScores)

	type ranked struct {
		doc     models.PersonalizedDocument
		final   float32
		tieRank int
	}
	out := make([]ranked, n)
	for i := range docs {
		final := ratio/float32(interestPos[i]) + (1-ratio)/float32(tagPos[i])
		tie := tagPos[i]
		if ratio >= 0.5 {
			tie = interestPos[i]
		}
		out[i] = ranked{doc: docs[i], final: final, tieRank: tie}
	}
	slices.SortStableFunc(out, func(a, b ranked) int {
		if c := scorecmp.CompareDesc(a.final, b.final); c != 0 {
			return c
		}
		return cmp.Compare(a.tieRank, b.tieRank)
	})

	for i := range out {
		docs[i] = out[i].doc
		docs[i].Score = out[i].final
	}
	return docs
}

// RerankByScores orders docs by weighted reciprocal rank fusion of their
// interest scores, tag scores and retrieval scores, weighted by
// weights[0], weights[1] and weights[2]. A component without scores
// contributes nothing. Ties are broken by id descending.
func RerankByScores(sys *coi.System, docs []models.PersonalizedDocument, interests *coi.UserInterests, tags models.TagWeights, weights [3]float32, t time.Time) []models.PersonalizedDocument {
	start := time.Now()
	defer func() { metrics.RecordRerank(time.Since(start)) }()

	toMap := func(scores []float32) fusion.Scores[models.DocumentID] {
		m := make(fusion.Scores[models.DocumentID], len(scores))
		for i, s := range scores {
			m[docs[i].ID] = s
		}
		return m
	}

	retrieval := make([]float32, len(docs))
	for i := range docs {
		retrieval[i] = docs[i].Score
	}
	inputs := []fusion.Weighted[models.DocumentID]{
		{Weight: weights[2], Scores: toMap(retrieval)},
	}
	if scores, ok := interestScores(sys, docs, interests, t); ok {
		inputs = append(inputs, fusion.Weighted[models.DocumentID]{Weight: weights[0], Scores: toMap(scores)})
	}
	if scores, ok := tagScores(docs, tags); ok {
		inputs = append(inputs, fusion.Weighted[models.DocumentID]{Weight: weights[1], Scores: toMap(scores)})
	}

	fused := fusion.RRF(fusion.DefaultRRFK, inputs...)
	for i := range docs {
		docs[i].Score = fused[docs[i].ID]
	}
	slices.SortFunc(docs, func(a, b models.PersonalizedDocument) int {
		if c := scorecmp.CompareDesc(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return docs
}
