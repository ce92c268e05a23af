// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/validation"
)

// TopicReactions is the default topic of reaction events.
const TopicReactions = "vantage-reactions"

// Kind distinguishes reactions from view time reports.
type Kind string

const (
	// KindReaction is a positive or negative reaction to a document.
	KindReaction Kind = "reaction"
	// KindView reports time spent reading a document.
	KindView Kind = "view"
)

// Message metadata keys.
const (
	MetadataUserID        = "user_id"
	MetadataKind          = "kind"
	MetadataCorrelationID = "correlation_id"
)

// ReactionEvent is a user interaction with a document.
type ReactionEvent struct {
	EventID    string    `json:"event_id" validate:"required,uuid"`
	Kind       Kind      `json:"kind" validate:"required,oneof=reaction view"`
	UserID     string    `json:"user_id" validate:"required,user_id"`
	DocumentID string    `json:"document_id" validate:"required,document_id"`
	Polarity   string    `json:"polarity,omitempty" validate:"required_if=Kind reaction,omitempty,oneof=positive negative"`
	ViewTimeMs int64     `json:"view_time_ms,omitempty" validate:"gte=0"`
	Timestamp  time.Time `json:"timestamp" validate:"required"`
}

// NewReaction creates a reaction event with a fresh id.
func NewReaction(user models.UserID, doc models.DocumentID, polarity coi.Polarity, t time.Time) *ReactionEvent {
	return &ReactionEvent{
		EventID:    uuid.NewString(),
		Kind:       KindReaction,
		UserID:     string(user),
		DocumentID: string(doc),
		Polarity:   polarity.String(),
		Timestamp:  t.UTC(),
	}
}

// NewView creates a view time event with a fresh id.
func NewView(user models.UserID, doc models.DocumentID, viewed time.Duration, t time.Time) *ReactionEvent {
	return &ReactionEvent{
		EventID:    uuid.NewString(),
		Kind:       KindView,
		UserID:     string(user),
		DocumentID: string(doc),
		ViewTimeMs: viewed.Milliseconds(),
		Timestamp:  t.UTC(),
	}
}

// Validate checks the event fields.
func (e *ReactionEvent) Validate() error {
	if err := validation.Validate(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// ViewTime returns the reported view time.
func (e *ReactionEvent) ViewTime() time.Duration {
	return time.Duration(e.ViewTimeMs) * time.Millisecond
}

// ParsedPolarity returns the reaction polarity.
func (e *ReactionEvent) ParsedPolarity() (coi.Polarity, error) {
	return coi.ParsePolarity(e.Polarity)
}

// MarshalEvent validates and encodes an event.
func MarshalEvent(e *ReactionEvent) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal reaction event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates an event.
func UnmarshalEvent(data []byte) (*ReactionEvent, error) {
	var e ReactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// NewMessage encodes e into a watermill message. The event id becomes the
// message UUID, which NATS uses for deduplication.
func NewMessage(e *ReactionEvent) (*message.Message, error) {
	data, err := MarshalEvent(e)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set(MetadataUserID, e.UserID)
	msg.Metadata.Set(MetadataKind, string(e.Kind))
	return msg, nil
}
