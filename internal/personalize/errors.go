// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import "errors"

var (
	// ErrRetrievalFailed is returned when every per-CoI query failed. It
	// wraps the joined query errors.
	ErrRetrievalFailed = errors.New("fetching documents failed")

	// ErrNotEnoughInterests is returned by PersonalizedDocuments when the
	// user does not have enough CoIs for personalization.
	ErrNotEnoughInterests = errors.New("not enough interests")

	// ErrHistoryTooSmall is returned for a stateless history that is empty
	// or does not produce enough CoIs.
	ErrHistoryTooSmall = errors.New("history too small")

	// ErrDocumentNotFound is returned when a reaction refers to an unknown
	// document.
	ErrDocumentNotFound = errors.New("document not found")
)
