// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/storage"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func mustEmbedding(t *testing.T, values ...float32) embedding.Embedding {
	t.Helper()
	e, err := embedding.New(values)
	if err != nil {
		t.Fatalf("embedding.New(%v): %v", values, err)
	}
	return e
}

func sequentialIDs() coi.IDSource {
	var mu sync.Mutex
	n := 0
	return func() coi.ID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return coi.ID(fmt.Sprintf("coi-%03d", n))
	}
}

func newTestSystem(t *testing.T) *coi.System {
	t.Helper()
	s, err := coi.NewSystem(coi.DefaultConfig(), coi.WithClock(coi.NewFixedClock(testNow)), coi.WithIDSource(sequentialIDs()))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return s
}

// positiveInterests creates one positive CoI per point, all last viewed at
// testNow.
func positiveInterests(t *testing.T, points ...[]float32) *coi.UserInterests {
	t.Helper()
	interests := &coi.UserInterests{}
	for i, p := range points {
		interests.Positive = append(interests.Positive, coi.PositiveCoi{
			ID:    coi.ID(fmt.Sprintf("pos-%d", i)),
			Point: mustEmbedding(t, p...),
			Stats: coi.Stats{ViewCount: 1, LastView: testNow},
		})
	}
	return interests
}

// corpus returns documents on the unit circle, ordered by angle from the
// x axis: d1 at 0°, d5 at 90°.
func corpus(t *testing.T) []models.Document {
	t.Helper()
	return []models.Document{
		{ID: "d1", Embedding: mustEmbedding(t, 1, 0), Tags: []models.DocumentTag{"news"}},
		{ID: "d2", Embedding: mustEmbedding(t, 0.9, 0.1), Tags: []models.DocumentTag{"news", "sports"}},
		{ID: "d3", Embedding: mustEmbedding(t, 0.5, 0.5), Tags: []models.DocumentTag{"sports"}},
		{ID: "d4", Embedding: mustEmbedding(t, 0.1, 0.9)},
		{ID: "d5", Embedding: mustEmbedding(t, 0, 1), Tags: []models.DocumentTag{"culture"}},
	}
}

func newTestStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	if err := s.UpsertDocuments(context.Background(), corpus(t)); err != nil {
		t.Fatalf("UpsertDocuments: %v", err)
	}
	return s
}

// failingSearcher fails queries whose embedding is selected by fail and
// forwards the rest.
type failingSearcher struct {
	next storage.Searcher
	fail func(embedding.Embedding) bool

	mu    sync.Mutex
	calls []storage.KnnParams
}

var errSearchUnavailable = errors.New("search backend unavailable")

func (f *failingSearcher) KNN(ctx context.Context, params storage.KnnParams) ([]models.PersonalizedDocument, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.fail != nil && f.fail(params.Embedding) {
		return nil, errSearchUnavailable
	}
	return f.next.KNN(ctx, params)
}

func (f *failingSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestOrchestrator(searcher storage.Searcher) *Orchestrator {
	cfg := DefaultConfig()
	return NewOrchestrator(searcher, cfg, coi.DefaultConfig().Horizon, zerolog.Nop())
}

func docIDs(docs []models.PersonalizedDocument) []models.DocumentID {
	out := make([]models.DocumentID, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func equalIDs(a, b []models.DocumentID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func personalized(t *testing.T, docs []models.Document) []models.PersonalizedDocument {
	t.Helper()
	out := make([]models.PersonalizedDocument, len(docs))
	for i := range docs {
		out[i] = docs[i].Personalized(1)
	}
	return out
}
