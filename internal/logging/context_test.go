// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()
	a, b := GenerateCorrelationID(), GenerateCorrelationID()
	if len(a) != 8 {
		t.Errorf("expected 8 character id, got %q", a)
	}
	if a == b {
		t.Errorf("expected unique ids, got %q twice", a)
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	if id := CorrelationIDFromContext(ctx); id != "abc12345" {
		t.Errorf("expected abc12345, got %q", id)
	}
	if kept := ContextWithNewCorrelationID(ctx); CorrelationIDFromContext(kept) != "abc12345" {
		t.Error("expected existing correlation id to be kept")
	}
	if fresh := ContextWithNewCorrelationID(context.Background()); CorrelationIDFromContext(fresh) == "" {
		t.Error("expected a generated correlation id")
	}
}

func TestUserIDContext(t *testing.T) {
	t.Parallel()
	ctx := ContextWithUserID(context.Background(), "user-1")
	if user := UserIDFromContext(ctx); user != "user-1" {
		t.Errorf("expected user-1, got %q", user)
	}
	if user := UserIDFromContext(context.Background()); user != "" {
		t.Errorf("expected empty user, got %q", user)
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithUserID(ctx, "user-1")

	Ctx(ctx).Info().Int("cois", 3).Msg("Interests updated")

	output := buf.String()
	for _, want := range []string{`"correlation_id":"corr-1"`, `"user_id":"user-1"`, `"cois":3`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestCtx_WithoutValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Msg("plain")

	if strings.Contains(buf.String(), "correlation_id") || strings.Contains(buf.String(), "user_id") {
		t.Errorf("expected no context fields, got: %s", buf.String())
	}
}

func TestLoggerFromContext_NoLogger(t *testing.T) {
	t.Parallel()
	logger := LoggerFromContext(context.Background())
	if logger.GetLevel() != Logger().GetLevel() {
		t.Error("expected the global logger")
	}
}

func TestWithComponent(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := WithComponent("orchestrator")
	logger.Info().Msg("ready")

	if !strings.Contains(buf.String(), `"component":"orchestrator"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
