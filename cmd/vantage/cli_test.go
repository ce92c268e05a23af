// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vantage/internal/config"
	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/models"
)

// inMemoryEnv points every store at memory and disables events. Tests
// using it cannot run in parallel.
func inMemoryEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BADGER_IN_MEMORY", "true")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()

	want := []string{"serve", "interests", "documents", "react", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "vantage "+version) {
		t.Errorf("Expected version output, got %q", out)
	}
}

func TestInterestsShow_UnknownUser(t *testing.T) {
	inMemoryEnv(t)

	out, err := runCLI(t, "interests", "show", "user-1")
	if err != nil {
		t.Fatalf("interests show failed: %v", err)
	}
	var view interestsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if view.User != "user-1" || view.Positive != 0 || view.Negative != 0 || view.Enough {
		t.Errorf("Expected empty interests for user-1, got %+v", view)
	}
}

func TestInterestsShow_InvalidUser(t *testing.T) {
	inMemoryEnv(t)

	if _, err := runCLI(t, "interests", "show", strings.Repeat("x", models.MaxIDLength+1)); err == nil {
		t.Error("Expected error for an over-long user id")
	}
}

func TestInterestsRecommend_NotEnoughInterests(t *testing.T) {
	inMemoryEnv(t)

	_, err := runCLI(t, "interests", "recommend", "user-1")
	if err == nil || !strings.Contains(err.Error(), "not enough interests") {
		t.Errorf("Expected not enough interests error, got %v", err)
	}
}

func TestInterestsRecommend_InvalidFilter(t *testing.T) {
	inMemoryEnv(t)

	if _, err := runCLI(t, "interests", "recommend", "user-1", "--filter", "[1]"); err == nil {
		t.Error("Expected error for an invalid filter")
	}
}

func TestInterestsScore(t *testing.T) {
	inMemoryEnv(t)
	if err := os.WriteFile("vectors.json", []byte(`{"cats": [[1, 0], [0, 1]], "dogs": [0, 1]}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile("ragged.json", []byte(`{"cats": [[1, 0], [1]]}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown pooling", []string{"--vectors", "vectors.json", "--pooling", "max"}, "unknown pooling strategy"},
		{"ragged token matrix", []string{"--vectors", "ragged.json"}, `embedding for "cats"`},
		{"pooled vectors load", []string{"--vectors", "vectors.json", "--pooling", "first"}, "has no interests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"interests", "score", "user-1"}, tt.args...)
			_, err := runCLI(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReactionBrokerURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		want    string
		wantErr bool
	}{
		{
			name:    "events disabled",
			mutate:  func(c *config.Config) { c.Events.Enabled = false },
			wantErr: true,
		},
		{
			name:    "gochannel backend",
			mutate:  func(c *config.Config) { c.Events.Transport.Backend = events.BackendGoChannel },
			wantErr: true,
		},
		{
			name: "external server",
			mutate: func(c *config.Config) {
				c.Events.Transport.Backend = events.BackendNATS
				c.Events.Transport.NATS.URL = "nats://broker:4222"
			},
			want: "nats://broker:4222",
		},
		{
			name: "embedded server",
			mutate: func(c *config.Config) {
				c.Events.Transport.Backend = events.BackendNATS
				c.Events.Transport.NATS.Embedded = true
				c.Events.Transport.NATS.Server.Host = "127.0.0.1"
				c.Events.Transport.NATS.Server.Port = 4333
			},
			want: "nats://127.0.0.1:4333",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{}
			cfg.Events.Enabled = true
			tt.mutate(cfg)

			got, err := reactionBrokerURL(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReactCmd_InvalidPolarity(t *testing.T) {
	t.Parallel()
	if _, err := runCLI(t, "react", "user-1", "doc-1", "--polarity", "neutral"); err == nil {
		t.Error("Expected error for invalid polarity")
	}
}

type recordingWriter struct {
	batches [][]models.Document
	err     error
}

func (w *recordingWriter) UpsertDocuments(_ context.Context, docs []models.Document) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]models.Document(nil), docs...))
	return nil
}

func (w *recordingWriter) DeleteDocuments(context.Context, []models.DocumentID) error {
	return nil
}

func TestImportDocuments(t *testing.T) {
	t.Parallel()

	input := `{"id": "doc-1", "embedding": [3, 4], "tags": ["news"]}

{"id": "doc-2", "embedding": [0, 1], "properties": {"lang": "en"}}
`
	w := &recordingWriter{}
	n, err := importDocuments(context.Background(), w, strings.NewReader(input))
	if err != nil {
		t.Fatalf("importDocuments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 documents, got %d", n)
	}
	if len(w.batches) != 1 || len(w.batches[0]) != 2 {
		t.Fatalf("Expected one batch of 2, got %v", w.batches)
	}
	first := w.batches[0][0]
	if first.Embedding[0] < 0.59 || first.Embedding[0] > 0.61 {
		t.Errorf("Expected normalized embedding, got %v", first.Embedding)
	}
}

func TestImportDocuments_Batches(t *testing.T) {
	t.Parallel()

	var input strings.Builder
	for i := 0; i < importBatchSize+1; i++ {
		input.WriteString(`{"id": "doc-`)
		input.WriteString(strings.Repeat("a", 1+i%5))
		input.WriteString(`", "embedding": [1, 0]}` + "\n")
	}
	w := &recordingWriter{}
	n, err := importDocuments(context.Background(), w, strings.NewReader(input.String()))
	if err != nil {
		t.Fatalf("importDocuments failed: %v", err)
	}
	if n != importBatchSize+1 || len(w.batches) != 2 {
		t.Errorf("Expected %d documents in 2 batches, got %d in %d", importBatchSize+1, n, len(w.batches))
	}
}

func TestImportDocuments_Errors(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("disk full")
	tests := []struct {
		name    string
		input   string
		writer  *recordingWriter
		wantErr error
		wantMsg string
	}{
		{"malformed json", `{"id": "doc-1", "embedding": [1,`, &recordingWriter{}, nil, "line 1"},
		{"invalid id", `{"id": "", "embedding": [1, 0]}`, &recordingWriter{}, nil, "line 1"},
		{"zero embedding", "\n" + `{"id": "doc-1", "embedding": [0, 0]}`, &recordingWriter{}, nil, "line 2"},
		{"write failure", `{"id": "doc-1", "embedding": [1, 0]}`, &recordingWriter{err: writeErr}, writeErr, "upsert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := importDocuments(context.Background(), tt.writer, strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}
