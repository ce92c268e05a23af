// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package validation checks struct tags with go-playground/validator v10.
//
// One validator instance is shared by the configuration loader and the
// event handlers. Besides the built-in tags it knows the domain tags
//
//	document_id    document ids, see models.DocumentID
//	user_id        user ids
//	property_id    document property ids (no dots)
//	document_tag   document tags, 1 to 256 bytes without NUL
//	unit_interval  floats within [0, 1], NaN rejected
//
// Fields are reported by their koanf or JSON name:
//
//	type ReactionEvent struct {
//	    UserID     string `json:"user_id" validate:"required,user_id"`
//	    DocumentID string `json:"document_id" validate:"required,document_id"`
//	}
//
//	err := validation.Validate(&event)
//	// user_id must be a valid user id
//
// A non-nil result is always an *Error listing every failed rule.
package validation
