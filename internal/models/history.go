// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

import "time"

// HistoryEntry is a document the user interacted with, as supplied by
// clients that do not keep server-side state. Entries are ordered oldest
// first. A nil Timestamp is filled in from the next newer entry.
type HistoryEntry struct {
	ID        DocumentID `json:"id"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ValidatedHistoryEntry is a history entry with a resolved timestamp.
type ValidatedHistoryEntry struct {
	ID        DocumentID
	Timestamp time.Time
}
