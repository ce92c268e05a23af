// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/scorecmp"
)

// MemoryStore keeps documents and user state in process memory. KNN is an
// exact scan. It is used in tests and for small deployments.
type MemoryStore struct {
	mu           sync.RWMutex
	docs         map[models.DocumentID]models.Document
	interests    map[models.UserID]coi.UserInterests
	tags         map[models.UserID]models.TagWeights
	interactions map[models.UserID]map[models.DocumentID]time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:         make(map[models.DocumentID]models.Document),
		interests:    make(map[models.UserID]coi.UserInterests),
		tags:         make(map[models.UserID]models.TagWeights),
		interactions: make(map[models.UserID]map[models.DocumentID]time.Time),
	}
}

// UpsertDocuments inserts or replaces documents.
func (s *MemoryStore) UpsertDocuments(_ context.Context, docs []models.Document) error {
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range docs {
		doc := docs[i]
		doc.Embedding = doc.Embedding.Clone()
		s.docs[doc.ID] = doc
	}
	return nil
}

// DeleteDocuments removes documents. Unknown ids are ignored.
func (s *MemoryStore) DeleteDocuments(_ context.Context, ids []models.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// GetInteracted returns the known documents among ids, in the order given.
func (s *MemoryStore) GetInteracted(_ context.Context, ids []models.DocumentID) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// KNN scans all documents and returns the K most similar.
func (s *MemoryStore) KNN(ctx context.Context, params KnnParams) ([]models.PersonalizedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.K <= 0 {
		return nil, nil
	}
	f := params.EffectiveFilter()

	s.mu.RLock()
	results := make([]models.PersonalizedDocument, 0, len(s.docs))
	for id, doc := range s.docs {
		if slices.Contains(params.Excluded, id) {
			continue
		}
		if len(doc.Embedding) != len(params.Embedding) {
			continue
		}
		if !filter.Match(f, &doc) {
			continue
		}
		score := doc.Embedding.Dot(params.Embedding)
		if params.MinSimilarity != nil && score < *params.MinSimilarity {
			continue
		}
		results = append(results, doc.Personalized(score))
	}
	s.mu.RUnlock()

	SortByScore(results)
	if len(results) > params.K {
		results = results[:params.K]
	}
	return results, nil
}

// SortByScore orders documents by score descending, ties broken by id
// descending.
func SortByScore(docs []models.PersonalizedDocument) {
	slices.SortFunc(docs, func(a, b models.PersonalizedDocument) int {
		if c := scorecmp.CompareDesc(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// LoadInterests implements InterestStore.
func (s *MemoryStore) LoadInterests(_ context.Context, user models.UserID) (coi.UserInterests, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	interests, ok := s.interests[user]
	if !ok {
		return coi.UserInterests{}, nil
	}
	return interests.Clone(), nil
}

// StoreInterests implements InterestStore.
func (s *MemoryStore) StoreInterests(_ context.Context, user models.UserID, interests coi.UserInterests) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests[user] = interests.Clone()
	return nil
}

// DeleteInterests implements InterestStore.
func (s *MemoryStore) DeleteInterests(_ context.Context, user models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.interests, user)
	delete(s.tags, user)
	delete(s.interactions, user)
	return nil
}

// LoadTagWeights implements TagStore.
func (s *MemoryStore) LoadTagWeights(_ context.Context, user models.UserID) (models.TagWeights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.TagWeights, len(s.tags[user]))
	out.Merge(s.tags[user])
	return out, nil
}

// AddTagWeights implements TagStore.
func (s *MemoryStore) AddTagWeights(_ context.Context, user models.UserID, tags []models.DocumentTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTagWeightsLocked(user, tags)
	return nil
}

func (s *MemoryStore) addTagWeightsLocked(user models.UserID, tags []models.DocumentTag) {
	weights, ok := s.tags[user]
	if !ok {
		weights = make(models.TagWeights)
		s.tags[user] = weights
	}
	weights.Add(tags)
}

// AddInteraction implements InteractionStore.
func (s *MemoryStore) AddInteraction(_ context.Context, user models.UserID, doc models.DocumentID, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addInteractionLocked(user, doc, t)
	return nil
}

func (s *MemoryStore) addInteractionLocked(user models.UserID, doc models.DocumentID, t time.Time) {
	docs, ok := s.interactions[user]
	if !ok {
		docs = make(map[models.DocumentID]time.Time)
		s.interactions[user] = docs
	}
	docs[doc] = t
}

// Interactions implements InteractionStore. Ids are sorted.
func (s *MemoryStore) Interactions(_ context.Context, user models.UserID) ([]models.DocumentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentID, 0, len(s.interactions[user]))
	for id := range s.interactions[user] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// ApplyReaction implements ReactionStore under a single lock.
func (s *MemoryStore) ApplyReaction(_ context.Context, user models.UserID, r *Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests[user] = r.Interests.Clone()
	if len(r.Tags) > 0 {
		s.addTagWeightsLocked(user, r.Tags)
	}
	if r.Document != "" {
		s.addInteractionLocked(user, r.Document, r.Time)
	}
	return nil
}
