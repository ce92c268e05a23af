// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     slog.Level
		wantLevel string
	}{
		{"info level", slog.LevelInfo, "info"},
		{"warn level", slog.LevelWarn, "warn"},
		{"error level", slog.LevelError, "error"},
		{"custom level above error", slog.LevelError + 4, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			handler := NewSlogHandler(zerolog.New(&buf))

			record := slog.NewRecord(time.Now(), tt.level, "service restarted", 0)
			if err := handler.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			entry := decodeEntry(t, &buf)
			if entry["level"] != tt.wantLevel || entry["message"] != "service restarted" {
				t.Errorf("unexpected entry %v", entry)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()
	handler := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled for a warn logger")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled for a warn logger")
	}
}

func TestSlogHandler_AttrsAndGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	// Attributes added before a group stay unqualified.
	logger := slog.New(NewSlogHandler(zerolog.New(&buf))).
		With("supervisor", "vantage").
		WithGroup("event").
		WithGroup("service")

	logger.Info("service failed",
		"name", "event-router",
		"restarts", 2,
		"backoff", time.Second,
		"err", errors.New("boom"),
		slog.Group("limits", "threshold", 5.0),
	)

	entry := decodeEntry(t, &buf)
	want := map[string]interface{}{
		"supervisor":                     "vantage",
		"event.service.name":             "event-router",
		"event.service.restarts":         float64(2),
		"event.service.err":              "boom",
		"event.service.limits.threshold": float64(5),
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("expected %s=%v, got %v (entry %v)", key, value, entry[key], entry)
		}
	}
	if _, ok := entry["event.service.backoff"]; !ok {
		t.Errorf("expected backoff duration, got %v", entry)
	}
}

func TestSlogHandler_WithEmpty(t *testing.T) {
	t.Parallel()
	handler := NewSlogHandler(zerolog.Nop())

	if handler.WithAttrs(nil) != slog.Handler(handler) {
		t.Error("expected WithAttrs(nil) to return the same handler")
	}
	if handler.WithGroup("") != slog.Handler(handler) {
		t.Error("expected WithGroup(\"\") to return the same handler")
	}
}

func TestSlogHandler_CorrelationID(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf)))

	ctx := ContextWithCorrelationID(context.Background(), "corr-7")
	logger.InfoContext(ctx, "with context")

	if !strings.Contains(buf.String(), `"correlation_id":"corr-7"`) {
		t.Errorf("expected correlation id, got: %s", buf.String())
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level slog.Level
		want  zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.level); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	NewSlogLogger("supervisor").Warn("service terminated")

	entry := decodeEntry(t, &buf)
	if entry["component"] != "supervisor" || entry["level"] != "warn" {
		t.Errorf("unexpected entry %v", entry)
	}
}
