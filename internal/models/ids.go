// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Identifier validation errors.
var (
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrInvalidPropertyID = errors.New("invalid document property id")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidTag        = errors.New("invalid document tag")
)

// MaxIDLength is the maximum length in bytes of ids and tags.
const MaxIDLength = 256

var (
	genericIDSyntax  = regexp.MustCompile(`^[a-zA-Z0-9\-:@.][a-zA-Z0-9\-:@._]*$`)
	propertyIDSyntax = regexp.MustCompile(`^[a-zA-Z0-9\-:@][a-zA-Z0-9\-:@_]*$`)
)

// DocumentID uniquely identifies a document.
type DocumentID string

// UserID uniquely identifies a user.
type UserID string

// PropertyID names a document property. Unlike document ids it must not
// contain dots, which are reserved for nested field paths.
type PropertyID string

// DocumentTag is a free-form label attached to a document.
type DocumentTag string

func checkID(value string, syntax *regexp.Regexp, sentinel error) error {
	if len(value) == 0 || len(value) > MaxIDLength {
		return fmt.Errorf("%w: length %d not in 1..%d", sentinel, len(value), MaxIDLength)
	}
	if !syntax.MatchString(value) {
		return fmt.Errorf("%w: %q", sentinel, value)
	}
	return nil
}

// NewDocumentID validates and returns a document id.
func NewDocumentID(value string) (DocumentID, error) {
	if err := checkID(value, genericIDSyntax, ErrInvalidDocumentID); err != nil {
		return "", err
	}
	return DocumentID(value), nil
}

// Validate checks the id syntax.
func (id DocumentID) Validate() error {
	return checkID(string(id), genericIDSyntax, ErrInvalidDocumentID)
}

// NewUserID validates and returns a user id.
func NewUserID(value string) (UserID, error) {
	if err := checkID(value, genericIDSyntax, ErrInvalidUserID); err != nil {
		return "", err
	}
	return UserID(value), nil
}

// Validate checks the id syntax.
func (id UserID) Validate() error {
	return checkID(string(id), genericIDSyntax, ErrInvalidUserID)
}

// NewPropertyID validates and returns a property id.
func NewPropertyID(value string) (PropertyID, error) {
	if err := checkID(value, propertyIDSyntax, ErrInvalidPropertyID); err != nil {
		return "", err
	}
	return PropertyID(value), nil
}

// Validate checks the id syntax.
func (id PropertyID) Validate() error {
	return checkID(string(id), propertyIDSyntax, ErrInvalidPropertyID)
}

// NewDocumentTag validates and returns a tag. Tags are 1 to 256 bytes and
// must not contain NUL.
func NewDocumentTag(value string) (DocumentTag, error) {
	tag := DocumentTag(value)
	if err := tag.Validate(); err != nil {
		return "", err
	}
	return tag, nil
}

// Validate checks the tag length and content.
func (t DocumentTag) Validate() error {
	if len(t) == 0 || len(t) > MaxIDLength {
		return fmt.Errorf("%w: length %d not in 1..%d", ErrInvalidTag, len(t), MaxIDLength)
	}
	if strings.IndexByte(string(t), 0) >= 0 {
		return fmt.Errorf("%w: contains NUL", ErrInvalidTag)
	}
	return nil
}

// IsValidDocumentID reports whether value is a valid document id.
func IsValidDocumentID(value string) bool {
	return checkID(value, genericIDSyntax, ErrInvalidDocumentID) == nil
}

// IsValidPropertyID reports whether value is a valid property id.
func IsValidPropertyID(value string) bool {
	return checkID(value, propertyIDSyntax, ErrInvalidPropertyID) == nil
}
