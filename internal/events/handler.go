// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/personalize"
)

// Reactor applies user interactions. personalize.Engine implements it.
type Reactor interface {
	ReactToDocument(ctx context.Context, user models.UserID, id models.DocumentID, polarity coi.Polarity, t time.Time) error
	ViewDocument(ctx context.Context, user models.UserID, id models.DocumentID, viewed time.Duration) error
}

// ReactionHandler consumes reaction events and applies them to user
// interests.
type ReactionHandler struct {
	reactor Reactor
	topic   string
	logger  zerolog.Logger
}

// NewReactionHandler creates a handler for events of topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReactionHandler(reactor Reactor, topic string, logger zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		reactor: reactor,
		topic:   topic,
		logger:  logger.With().Str("component", "reaction-handler").Logger(),
	}
}

// Handle processes one message. Invalid payloads and reactions to unknown
// documents fail with ErrInvalidEvent; other errors are transient.
func (h *ReactionHandler) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := logging.ContextWithLogger(msg.Context(), h.logger)
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	event, err := UnmarshalEvent(msg.Payload)
	if err == nil {
		ctx = logging.ContextWithUserID(ctx, event.UserID)
		err = h.apply(ctx, event)
	}
	metrics.RecordEventConsumed(h.topic, resultLabel(err), time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("reaction event failed")
	}
	return err
}

func (h *ReactionHandler) apply(ctx context.Context, event *ReactionEvent) error {
	user := models.UserID(event.UserID)
	doc := models.DocumentID(event.DocumentID)

	switch event.Kind {
	case KindReaction:
		polarity, err := event.ParsedPolarity()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		err = h.reactor.ReactToDocument(ctx, user, doc, polarity, event.Timestamp)
		return classify(err)
	case KindView:
		return classify(h.reactor.ViewDocument(ctx, user, doc, event.ViewTime()))
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, event.Kind)
	}
}

// classify marks errors that a retry cannot fix as invalid.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, personalize.ErrDocumentNotFound),
		errors.Is(err, embedding.ErrInvalidEmbedding),
		errors.Is(err, models.ErrInvalidDocumentID),
		errors.Is(err, models.ErrInvalidUserID):
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	default:
		return err
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "processed"
	case errors.Is(err, ErrInvalidEvent):
		return "invalid"
	default:
		return "failed"
	}
}

// Register adds the handler to router, consuming from sub.
func (h *ReactionHandler) Register(router *Router, sub message.Subscriber) {
	router.AddConsumerHandler("reactions", h.topic, sub, h.Handle)
}
