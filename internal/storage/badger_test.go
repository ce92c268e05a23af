// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/vantage/internal/models"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	s := NewBadgerStore(db, 0)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_UserState(t *testing.T) {
	t.Parallel()
	testUserStore(t, newTestBadgerStore(t))
}

func TestBadgerStore_UserIDPrefix(t *testing.T) {
	t.Parallel()
	testUserIDPrefix(t, newTestBadgerStore(t))
}

func TestBadgerStore_ApplyReaction(t *testing.T) {
	t.Parallel()
	testApplyReaction(t, newTestBadgerStore(t))
}

func TestBadgerStore_Persistence(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "users")
	cfg := &BadgerConfig{Path: dir, Compression: true}
	ctx := context.Background()

	s, err := OpenBadgerStore(cfg)
	if err != nil {
		t.Fatalf("OpenBadgerStore failed: %v", err)
	}
	if err := s.AddTagWeights(ctx, "u1", []models.DocumentTag{"news"}); err != nil {
		t.Fatalf("AddTagWeights failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = OpenBadgerStore(cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	weights, err := s.LoadTagWeights(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadTagWeights failed: %v", err)
	}
	if weights["news"] != 1 {
		t.Errorf("Expected news=1 after reopen, got %v", weights)
	}
}

func TestBadgerStore_ConcurrentTagWeights(t *testing.T) {
	t.Parallel()
	s := newTestBadgerStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddTagWeights(ctx, "u1", []models.DocumentTag{"news"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, badger.ErrConflict) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	weights, _ := s.LoadTagWeights(ctx, "u1")
	if weights["news"] != succeeded {
		t.Errorf("Expected news=%d (one per committed add), got %d", succeeded, weights["news"])
	}
}

func TestBadgerStore_ClosedStore(t *testing.T) {
	t.Parallel()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	s := NewBadgerStore(db, 0.5)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := s.LoadInterests(context.Background(), "u1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestBadgerStore_RunGC_InMemory(t *testing.T) {
	t.Parallel()
	s := newTestBadgerStore(t)

	rewritten, err := s.RunGC()
	if err != nil {
		t.Errorf("Expected no error for in-memory GC, got %v", err)
	}
	if rewritten {
		t.Error("Expected nothing rewritten for in-memory store")
	}
}
