// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/storage"
)

// Engine exposes the personalization operations. The core operations work
// on caller supplied interests; the host helpers load and persist user
// state and serialize mutations per user. It is safe for concurrent use.
type Engine struct {
	config Config
	system *coi.System
	orch   *Orchestrator
	docs   storage.DocumentStore
	users  storage.UserStore
	locks  *keyedMutex
	logger zerolog.Logger
}

// NewEngine creates an engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, system *coi.System, searcher storage.Searcher, docs storage.DocumentStore, users storage.UserStore, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid personalization config: %w", err)
	}
	if system == nil {
		return nil, fmt.Errorf("coi system is required")
	}
	logger = logger.With().Str("component", "personalize").Logger()
	return &Engine{
		config: cfg,
		system: system,
		orch:   NewOrchestrator(searcher, cfg, system.Config().Horizon, logger),
		docs:   docs,
		users:  users,
		locks:  newKeyedMutex(),
		logger: logger,
	}, nil
}

// Config returns the personalization settings.
func (e *Engine) Config() Config {
	return e.config
}

// System returns the CoI system.
func (e *Engine) System() *coi.System {
	return e.system
}

// Reinforce records a reaction of the given polarity to an embedding.
func (e *Engine) Reinforce(interests *coi.UserInterests, emb embedding.Embedding, polarity coi.Polarity, t time.Time) error {
	before := len(interests.Positive) + len(interests.Negative)
	if err := e.system.Reinforce(interests, emb, polarity, t); err != nil {
		metrics.RecordReinforcement(polarity.String(), "rejected")
		return err
	}
	outcome := "reinforced"
	if len(interests.Positive)+len(interests.Negative) > before {
		outcome = "created"
	}
	metrics.RecordReinforcement(polarity.String(), outcome)
	metrics.RecordCoiCounts(len(interests.Positive), len(interests.Negative))
	return nil
}

// LogViewTime adds view time to the positive CoI closest to emb.
func (e *Engine) LogViewTime(interests *coi.UserInterests, emb embedding.Embedding, viewed time.Duration) error {
	if err := e.system.RecordViewTime(interests, emb, viewed); err != nil {
		return err
	}
	metrics.RecordViewTime(viewed)
	return nil
}

// HasEnoughInterests reports whether interests suffice for personalization.
func (e *Engine) HasEnoughInterests(interests *coi.UserInterests) bool {
	return interests.HasEnough(e.system.Config())
}

// Retrieve runs the personalized kNN retrieval for interests.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Retrieve(ctx context.Context, req KnnRequest) (*KnnResult, error) {
	if req.NumCandidates <= 0 {
		req.NumCandidates = max(e.config.MaxNumberCandidates, req.Count)
	}
	return e.orch.Search(ctx, req)
}

// Rerank orders docs with the configured rerank mode.
func (e *Engine) Rerank(docs []models.PersonalizedDocument, interests *coi.UserInterests, tags models.TagWeights, t time.Time) []models.PersonalizedDocument {
	if e.config.RerankMode == RerankRRF {
		return RerankByScores(e.system, docs, interests, tags, e.config.scoreWeights(), t)
	}
	return Rerank(e.system, docs, interests, tags, e.config.InterestTagBias, t)
}

// Options control a personalized retrieval.
type Options struct {
	// Count of documents; zero uses the configured default.
	Count          int
	Filter         filter.Filter
	PublishedAfter *time.Time
	// ExcludeSeen excludes documents the user already reacted to.
	ExcludeSeen bool
}

// ReactToDocument records a user's reaction to a stored document. A
// positive reaction also adds the document's tags to the user's tag
// weights. The updated state is committed at once, so a failed reaction
// can be retried without double counting.
func (e *Engine) ReactToDocument(ctx context.Context, user models.UserID, id models.DocumentID, polarity coi.Polarity, t time.Time) error {
	docs, err := e.docs.GetInteracted(ctx, []models.DocumentID{id})
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	doc := docs[0]

	unlock := e.locks.Lock(string(user))
	defer unlock()

	interests, err := e.users.LoadInterests(ctx, user)
	if err != nil {
		return err
	}
	if err := e.Reinforce(&interests, doc.Embedding, polarity, t); err != nil {
		return fmt.Errorf("reinforce %s: %w", id, err)
	}

	reaction := storage.Reaction{Interests: interests, Time: t}
	if polarity == coi.Positive {
		reaction.Tags = doc.Tags
	}
	if e.config.StoreUserHistory {
		reaction.Document = id
	}
	if err := e.users.ApplyReaction(ctx, user, &reaction); err != nil {
		return err
	}

	e.logger.Debug().
		Str("user", string(user)).
		Str("document", string(id)).
		Str("polarity", polarity.String()).
		Msg("reaction recorded")
	return nil
}

// ViewDocument adds view time for a stored document to the user's CoIs.
func (e *Engine) ViewDocument(ctx context.Context, user models.UserID, id models.DocumentID, viewed time.Duration) error {
	docs, err := e.docs.GetInteracted(ctx, []models.DocumentID{id})
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	unlock := e.locks.Lock(string(user))
	defer unlock()

	interests, err := e.users.LoadInterests(ctx, user)
	if err != nil {
		return err
	}
	if len(interests.Positive) == 0 {
		return nil
	}
	if err := e.LogViewTime(&interests, docs[0].Embedding, viewed); err != nil {
		return fmt.Errorf("log view time for %s: %w", id, err)
	}
	return e.users.StoreInterests(ctx, user, interests)
}

// Interests returns the stored interests and tag weights of a user.
func (e *Engine) Interests(ctx context.Context, user models.UserID) (coi.UserInterests, models.TagWeights, error) {
	interests, err := e.users.LoadInterests(ctx, user)
	if err != nil {
		return coi.UserInterests{}, nil, err
	}
	tags, err := e.users.LoadTagWeights(ctx, user)
	if err != nil {
		return coi.UserInterests{}, nil, err
	}
	return interests, tags, nil
}

// ResetInterests deletes all state of a user.
func (e *Engine) ResetInterests(ctx context.Context, user models.UserID) error {
	unlock := e.locks.Lock(string(user))
	defer unlock()
	return e.users.DeleteInterests(ctx, user)
}

// PersonalizedDocuments retrieves and reranks documents for a stored user.
// It returns ErrNotEnoughInterests if the user lacks CoIs.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) PersonalizedDocuments(ctx context.Context, user models.UserID, opts Options) ([]models.PersonalizedDocument, error) {
	now := e.system.Now()
	interests, err := e.users.LoadInterests(ctx, user)
	if err != nil {
		return nil, err
	}
	if !e.HasEnoughInterests(&interests) {
		return nil, ErrNotEnoughInterests
	}

	var excluded []models.DocumentID
	if opts.ExcludeSeen && e.config.StoreUserHistory {
		if excluded, err = e.users.Interactions(ctx, user); err != nil {
			return nil, err
		}
	}
	tags, err := e.users.LoadTagWeights(ctx, user)
	if err != nil {
		return nil, err
	}
	return e.personalize(ctx, &interests, tags, excluded, opts, now)
}

// PersonalizeStateless retrieves and reranks documents for a client
// supplied history instead of stored user state. Warnings about the
// history are returned alongside the documents.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) PersonalizeStateless(ctx context.Context, history []models.HistoryEntry, opts Options) ([]models.PersonalizedDocument, []string, error) {
	now := e.system.Now()
	validated, warnings, err := ValidateHistory(history, e.config.MaxStatelessHistorySize, now, false)
	if err != nil {
		return nil, warnings, err
	}
	loaded, err := LoadHistory(ctx, e.docs, validated)
	if err != nil {
		return nil, warnings, err
	}
	interests, tags := DeriveInterestsAndTagWeights(e.system, loaded)
	if !e.HasEnoughInterests(&interests) {
		return nil, warnings, ErrHistoryTooSmall
	}

	var excluded []models.DocumentID
	if opts.ExcludeSeen {
		excluded = make([]models.DocumentID, len(validated))
		for i, entry := range validated {
			excluded[i] = entry.ID
		}
	}
	docs, err := e.personalize(ctx, &interests, tags, excluded, opts, now)
	return docs, warnings, err
}

//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) personalize(ctx context.Context, interests *coi.UserInterests, tags models.TagWeights, excluded []models.DocumentID, opts Options, now time.Time) ([]models.PersonalizedDocument, error) {
	count := e.config.ClampCount(opts.Count)
	result, err := e.Retrieve(ctx, KnnRequest{
		Interests:      interests,
		Count:          count,
		Excluded:       excluded,
		Filter:         opts.Filter,
		PublishedAfter: opts.PublishedAfter,
		Time:           now,
	})
	if err != nil {
		return nil, err
	}

	return e.Rerank(result.Documents, interests, tags, now), nil
}
