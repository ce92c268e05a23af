// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/storage"
)

// importBatchSize is the number of documents per upsert transaction.
const importBatchSize = 500

// maxDocumentLine bounds one JSON line of an import file.
const maxDocumentLine = 16 << 20

func newDocumentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage the document store",
	}
	cmd.AddCommand(newDocumentsImportCmd(opts), newDocumentsDeleteCmd(opts))
	return cmd
}

func newDocumentsImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl|->",
		Short: "Upsert documents from a JSON lines file",
		Long: `import reads one document per line:

  {"id": "doc-1", "embedding": [0.1, 0.2], "tags": ["news"], "properties": {"lang": "en"}}

Embeddings are normalized. Invalid lines abort the import; batches written
before the failure are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			docs, err := storage.OpenDuckDBStore(&cfg.Storage.DuckDB)
			if err != nil {
				return err
			}
			defer docs.Close()

			n, err := importDocuments(cmd.Context(), docs, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents\n", n)
			return nil
		},
	}
}

func newDocumentsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]models.DocumentID, len(args))
			for i, arg := range args {
				id, err := models.NewDocumentID(arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			docs, err := storage.OpenDuckDBStore(&cfg.Storage.DuckDB)
			if err != nil {
				return err
			}
			defer docs.Close()

			if err := docs.DeleteDocuments(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents\n", len(ids))
			return nil
		},
	}
}

// importDocuments upserts the JSON lines of r in batches and returns the
// number of documents written.
func importDocuments(ctx context.Context, w storage.DocumentWriter, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDocumentLine)

	var (
		batch   []models.Document
		written int
		line    int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.UpsertDocuments(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch ending at line %d: %w", line, err)
		}
		written += len(batch)
		logging.Debug().Int("documents", written).Msg("Import progress")
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		doc, err := decodeDocumentLine(raw)
		if err != nil {
			return written, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, doc)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("read documents: %w", err)
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

func decodeDocumentLine(raw []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, err
	}
	if err := doc.Validate(); err != nil {
		return doc, err
	}
	normalized, err := doc.Embedding.Normalize()
	if err != nil {
		return doc, err
	}
	doc.Embedding = normalized
	return doc, nil
}
