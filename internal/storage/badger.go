// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	interestsKeyPrefix   = "interests:"
	tagsKeyPrefix        = "tags:"
	interactionKeyPrefix = "interaction:"
)

// BadgerConfig configures the Badger user store.
type BadgerConfig struct {
	Path        string  `koanf:"path"`
	InMemory    bool    `koanf:"in_memory"`
	SyncWrites  bool    `koanf:"sync_writes"`
	Compression bool    `koanf:"compression"`
	GCRatio     float64 `koanf:"gc_ratio"`
}

// BadgerStore persists user interests, tag weights and interactions in
// BadgerDB. Values are JSON.
type BadgerStore struct {
	db      *badger.DB
	gcRatio float64
}

// OpenBadgerStore opens (or creates) the store.
func OpenBadgerStore(cfg *BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("User store opened")

	return NewBadgerStore(db, cfg.GCRatio), nil
}

// NewBadgerStore wraps an open database.
func NewBadgerStore(db *badger.DB, gcRatio float64) *BadgerStore {
	if gcRatio <= 0 || gcRatio >= 1 {
		gcRatio = 0.5
	}
	return &BadgerStore{db: db, gcRatio: gcRatio}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) getJSON(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return false, ErrClosed
	}
	return found, err
}

// LoadInterests implements InterestStore.
func (s *BadgerStore) LoadInterests(_ context.Context, user models.UserID) (coi.UserInterests, error) {
	var interests coi.UserInterests
	_, err := s.getJSON(interestsKeyPrefix+string(user), &interests)
	metrics.RecordStoreOperation("load", err)
	if err != nil {
		return coi.UserInterests{}, fmt.Errorf("load interests: %w", err)
	}
	return interests, nil
}

// StoreInterests implements InterestStore.
func (s *BadgerStore) StoreInterests(_ context.Context, user models.UserID, interests coi.UserInterests) error {
	data, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(interestsKeyPrefix+string(user)), data)
	})
	metrics.RecordStoreOperation("store", err)
	if err != nil {
		return fmt.Errorf("store interests: %w", err)
	}
	return nil
}

// DeleteInterests implements InterestStore. It resets all state of the
// user: interests, tag weights and interactions.
func (s *BadgerStore) DeleteInterests(_ context.Context, user models.UserID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{interestsKeyPrefix + string(user), tagsKeyPrefix + string(user)} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(interactionPrefix(user))
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordStoreOperation("delete", err)
	if err != nil {
		return fmt.Errorf("delete interests: %w", err)
	}
	return nil
}

// LoadTagWeights implements TagStore.
func (s *BadgerStore) LoadTagWeights(_ context.Context, user models.UserID) (models.TagWeights, error) {
	weights := make(models.TagWeights)
	_, err := s.getJSON(tagsKeyPrefix+string(user), &weights)
	metrics.RecordStoreOperation("tags_load", err)
	if err != nil {
		return nil, fmt.Errorf("load tag weights: %w", err)
	}
	return weights, nil
}

// AddTagWeights implements TagStore. The read-modify-write runs in one
// transaction, so concurrent adds conflict instead of losing updates.
func (s *BadgerStore) AddTagWeights(_ context.Context, user models.UserID, tags []models.DocumentTag) error {
	if len(tags) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return mergeTagWeights(txn, user, tags)
	})
	metrics.RecordStoreOperation("tags_add", err)
	if err != nil {
		return fmt.Errorf("add tag weights: %w", err)
	}
	return nil
}

func mergeTagWeights(txn *badger.Txn, user models.UserID, tags []models.DocumentTag) error {
	key := []byte(tagsKeyPrefix + string(user))
	weights := make(models.TagWeights)
	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &weights)
		}); err != nil {
			return err
		}
	}

	weights.Add(tags)
	data, err := json.Marshal(weights)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// interactionPrefix ends the user segment with NUL, which valid user ids
// never contain, so the scan for "a" does not match user "a:b".
func interactionPrefix(user models.UserID) string {
	return interactionKeyPrefix + string(user) + "\x00"
}

func interactionEntry(user models.UserID, doc models.DocumentID, t time.Time) (key, value []byte) {
	return []byte(interactionPrefix(user) + string(doc)), []byte(t.UTC().Format(time.RFC3339Nano))
}

// AddInteraction implements InteractionStore.
func (s *BadgerStore) AddInteraction(_ context.Context, user models.UserID, doc models.DocumentID, t time.Time) error {
	key, value := interactionEntry(user, doc, t)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	return nil
}

// Interactions implements InteractionStore. Ids are returned in key order.
func (s *BadgerStore) Interactions(_ context.Context, user models.UserID) ([]models.DocumentID, error) {
	var ids []models.DocumentID
	prefix := interactionPrefix(user)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			ids = append(ids, models.DocumentID(strings.TrimPrefix(string(it.Item().Key()), prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return ids, nil
}

// ApplyReaction implements ReactionStore. Interests, tag weights and the
// interaction are written in one transaction.
func (s *BadgerStore) ApplyReaction(_ context.Context, user models.UserID, r *Reaction) error {
	data, err := json.Marshal(r.Interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(interestsKeyPrefix+string(user)), data); err != nil {
			return err
		}
		if len(r.Tags) > 0 {
			if err := mergeTagWeights(txn, user, r.Tags); err != nil {
				return err
			}
		}
		if r.Document != "" {
			key, value := interactionEntry(user, r.Document, r.Time)
			return txn.Set(key, value)
		}
		return nil
	})
	metrics.RecordStoreOperation("react", err)
	if err != nil {
		return fmt.Errorf("apply reaction: %w", err)
	}
	return nil
}

// RunGC runs value log garbage collection until nothing is left to
// rewrite. It reports whether any file was rewritten.
func (s *BadgerStore) RunGC() (bool, error) {
	rewritten := false
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("run GC: %w", err)
		}
		rewritten = true
	}
}
