// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package events

import "errors"

var (
	// ErrInvalidEvent marks payloads that can never be processed. Such
	// messages are not retried.
	ErrInvalidEvent = errors.New("invalid reaction event")

	// ErrPublisherClosed is returned when publishing after Close.
	ErrPublisherClosed = errors.New("publisher is closed")
)
