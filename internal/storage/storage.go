// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCircuitOpen is returned when a protected backend is rejecting calls.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// KnnParams describes a single nearest neighbor query.
type KnnParams struct {
	// Embedding is the unit-norm query vector.
	Embedding embedding.Embedding
	// K is the number of documents to return.
	K int
	// NumCandidates is the number of candidates an approximate index may
	// consider. Exact searchers ignore it.
	NumCandidates int
	// Excluded documents are never returned.
	Excluded []models.DocumentID
	// Filter optionally restricts documents by property.
	Filter filter.Filter
	// PublishedAfter optionally restricts documents by publication date.
	PublishedAfter *time.Time
	// MinSimilarity drops documents below this cosine similarity if set.
	MinSimilarity *float32
	// Time is the logical time of the request.
	Time time.Time
}

// EffectiveFilter combines Filter and PublishedAfter.
func (p *KnnParams) EffectiveFilter() filter.Filter {
	return filter.WithPublishedAfter(p.Filter, p.PublishedAfter)
}

// Searcher runs nearest neighbor queries over documents. Scores of the
// returned documents are cosine similarities, ordered descending.
type Searcher interface {
	KNN(ctx context.Context, params KnnParams) ([]models.PersonalizedDocument, error)
}

// DocumentStore reads documents the user interacted with.
type DocumentStore interface {
	// GetInteracted returns the documents with the given ids. Unknown ids
	// are skipped.
	GetInteracted(ctx context.Context, ids []models.DocumentID) ([]models.Document, error)
}

// DocumentWriter ingests documents.
type DocumentWriter interface {
	UpsertDocuments(ctx context.Context, docs []models.Document) error
	DeleteDocuments(ctx context.Context, ids []models.DocumentID) error
}

// InterestStore persists user interests wholesale, keyed by user.
type InterestStore interface {
	// LoadInterests returns empty interests for unknown users.
	LoadInterests(ctx context.Context, user models.UserID) (coi.UserInterests, error)
	StoreInterests(ctx context.Context, user models.UserID, interests coi.UserInterests) error
	DeleteInterests(ctx context.Context, user models.UserID) error
}

// TagStore persists per-user tag weights.
type TagStore interface {
	// LoadTagWeights returns empty weights for unknown users.
	LoadTagWeights(ctx context.Context, user models.UserID) (models.TagWeights, error)
	AddTagWeights(ctx context.Context, user models.UserID, tags []models.DocumentTag) error
}

// InteractionStore records which documents a user reacted to, so that
// retrieval can exclude them.
type InteractionStore interface {
	AddInteraction(ctx context.Context, user models.UserID, doc models.DocumentID, t time.Time) error
	Interactions(ctx context.Context, user models.UserID) ([]models.DocumentID, error)
}

// Reaction is the user state written by one reaction to a document.
type Reaction struct {
	// Interests replace the stored interests.
	Interests coi.UserInterests
	// Tags are added to the tag weights.
	Tags []models.DocumentTag
	// Document is recorded as an interaction at Time unless empty.
	Document models.DocumentID
	Time     time.Time
}

// ReactionStore commits all writes of a reaction or none of them, so a
// retried reaction never applies its tag weights twice.
type ReactionStore interface {
	ApplyReaction(ctx context.Context, user models.UserID, r *Reaction) error
}

// UserStore is the full per-user state.
type UserStore interface {
	InterestStore
	TagStore
	InteractionStore
	ReactionStore
}
