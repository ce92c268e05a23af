// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

/*
Package models defines the data types shared across Vantage.

Identifiers:
  - DocumentID, UserID, PropertyID, DocumentTag: validated string types.
    Use the New* constructors for untrusted input.

Documents:
  - Document: id, embedding, tags and free-form Properties
  - PersonalizedDocument: a document with a retrieval score
  - TagWeights: per-user counts of tags from liked documents

History:
  - HistoryEntry: a client supplied interaction used for stateless
    personalization

Models carry JSON tags and are serialized with goccy/go-json by the
stores and the event codec.
*/
package models
