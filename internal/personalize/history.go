// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/storage"
)

// ValidateHistory checks a client supplied history, oldest entry first.
// Only the newest maxSize entries are kept. A missing timestamp is taken
// from the next newer entry, starting at now. The returned warnings report
// truncation and out of order timestamps.
func ValidateHistory(history []models.HistoryEntry, maxSize int, now time.Time, allowEmpty bool) ([]models.ValidatedHistoryEntry, []string, error) {
	if len(history) == 0 {
		if allowEmpty {
			return nil, nil, nil
		}
		return nil, nil, ErrHistoryTooSmall
	}

	var warnings []string
	if len(history) > maxSize {
		warnings = append(warnings, fmt.Sprintf("history truncated, max length is %d", maxSize))
		history = history[len(history)-maxSize:]
	}

	out := make([]models.ValidatedHistoryEntry, len(history))
	mostRecent := now
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if err := entry.ID.Validate(); err != nil {
			return nil, warnings, err
		}
		timestamp := mostRecent
		if entry.Timestamp != nil {
			timestamp = *entry.Timestamp
		}
		if timestamp.After(mostRecent) {
			warnings = append(warnings, fmt.Sprintf("inconsistent history ordering around document %s", entry.ID))
		}
		mostRecent = timestamp
		out[i] = models.ValidatedHistoryEntry{ID: entry.ID, Timestamp: timestamp}
	}
	return out, warnings, nil
}

// TrimHistory drops the oldest entries beyond maxLen.
func TrimHistory(history []models.ValidatedHistoryEntry, maxLen int) []models.ValidatedHistoryEntry {
	if surplus := len(history) - maxLen; surplus > 0 {
		return history[surplus:]
	}
	return history
}

// LoadedHistoryEntry is a history entry joined with its document.
type LoadedHistoryEntry struct {
	Timestamp time.Time
	Embedding embedding.Embedding
	Tags      []models.DocumentTag
}

// LoadHistory fetches the documents of the history. Entries whose document
// no longer exists are skipped.
func LoadHistory(ctx context.Context, docs storage.DocumentStore, history []models.ValidatedHistoryEntry) ([]LoadedHistoryEntry, error) {
	ids := make([]models.DocumentID, len(history))
	for i, entry := range history {
		ids[i] = entry.ID
	}
	found, err := docs.GetInteracted(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load history documents: %w", err)
	}
	byID := make(map[models.DocumentID]models.Document, len(found))
	for _, doc := range found {
		byID[doc.ID] = doc
	}

	loaded := make([]LoadedHistoryEntry, 0, len(history))
	for _, entry := range history {
		doc, ok := byID[entry.ID]
		if !ok {
			continue
		}
		loaded = append(loaded, LoadedHistoryEntry{
			Timestamp: entry.Timestamp,
			Embedding: doc.Embedding,
			Tags:      doc.Tags,
		})
	}
	return loaded, nil
}

// DeriveInterestsAndTagWeights replays the history as positive reactions
// and counts the tags of every entry.
func DeriveInterestsAndTagWeights(sys *coi.System, history []LoadedHistoryEntry) (coi.UserInterests, models.TagWeights) {
	var interests coi.UserInterests
	tags := make(models.TagWeights)
	for _, entry := range history {
		point, err := entry.Embedding.Normalize()
		if err != nil {
			continue
		}
		interests.Positive = sys.LogPositiveReaction(interests.Positive, point, entry.Timestamp)
		tags.Add(entry.Tags)
	}
	return interests, tags
}
