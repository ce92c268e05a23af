// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDocumentID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "doc1", false},
		{"all allowed characters", "a-b:c@d.e_f", false},
		{"leading dot", ".hidden", false},
		{"max length", strings.Repeat("a", MaxIDLength), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"leading underscore", "_doc", true},
		{"space", "doc 1", true},
		{"slash", "a/b", true},
		{"unicode", "dökument", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := NewDocumentID(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDocumentID) {
					t.Errorf("Expected ErrInvalidDocumentID for %q, got %v", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.value, err)
			}
			if string(id) != tt.value {
				t.Errorf("Expected id %q, got %q", tt.value, id)
			}
		})
	}
}

func TestNewPropertyID(t *testing.T) {
	t.Parallel()

	if _, err := NewPropertyID("publication_date"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := NewPropertyID("a.b"); !errors.Is(err, ErrInvalidPropertyID) {
		t.Errorf("Expected ErrInvalidPropertyID for dotted id, got %v", err)
	}
	if IsValidPropertyID("") {
		t.Error("Expected empty property id to be invalid")
	}
}

func TestNewDocumentTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "sports", false},
		{"spaces and unicode", "Formel 1 / Motorsport ä", false},
		{"empty", "", true},
		{"nul byte", "a\x00b", true},
		{"too long", strings.Repeat("t", MaxIDLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDocumentTag(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDocumentTag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTag) {
				t.Errorf("Expected ErrInvalidTag, got %v", err)
			}
		})
	}
}

func TestNewUserID(t *testing.T) {
	t.Parallel()

	if _, err := NewUserID("user-42@example.com"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := NewUserID("user 42"); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("Expected ErrInvalidUserID, got %v", err)
	}
}
