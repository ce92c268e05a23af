// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
)

const documentsTable = "documents"

// DuckDBConfig configures the DuckDB document store.
type DuckDBConfig struct {
	// Path of the database file. ":memory:" or empty opens an in-memory
	// database.
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`
}

// DuckDBStore stores documents in DuckDB and answers kNN queries with an
// exact cosine similarity scan.
type DuckDBStore struct {
	conn *sql.DB
}

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id VARCHAR PRIMARY KEY,
	embedding FLOAT[] NOT NULL,
	tags VARCHAR[] NOT NULL,
	properties JSON,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// OpenDuckDBStore opens the database and creates the schema.
func OpenDuckDBStore(cfg *DuckDBConfig) (*DuckDBStore, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}
	if path != "" {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s", path, numThreads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(ctx, documentsSchema); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Document store opened")
	return &DuckDBStore{conn: conn}, nil
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database")
	}
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}

// Ping checks the connection.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// UpsertDocuments implements DocumentWriter.
func (s *DuckDBStore) UpsertDocuments(ctx context.Context, docs []models.Document) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", documentsTable, time.Since(start), err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (id, embedding, tags, properties, updated_at)
		VALUES (?, CAST(CAST(? AS JSON) AS FLOAT[]), CAST(CAST(? AS JSON) AS VARCHAR[]), CAST(? AS JSON), now())`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		doc := &docs[i]
		if err = doc.Validate(); err != nil {
			return err
		}
		emb, tags, props, encErr := encodeDocument(doc)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = stmt.ExecContext(ctx, string(doc.ID), emb, tags, props); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func encodeDocument(doc *models.Document) (emb, tags, props string, err error) {
	e, err := json.Marshal(doc.Embedding)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal embedding: %w", err)
	}
	docTags := doc.Tags
	if docTags == nil {
		docTags = []models.DocumentTag{}
	}
	t, err := json.Marshal(docTags)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal tags: %w", err)
	}
	docProps := doc.Properties
	if docProps == nil {
		docProps = models.Properties{}
	}
	p, err := json.Marshal(docProps)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(e), string(t), string(p), nil
}

// DeleteDocuments implements DocumentWriter.
func (s *DuckDBStore) DeleteDocuments(ctx context.Context, ids []models.DocumentID) (err error) {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", documentsTable, time.Since(start), err) }()

	in, args := idPlaceholders(ids)
	if _, err = s.conn.ExecContext(ctx, "DELETE FROM documents WHERE id IN ("+in+")", args...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

func idPlaceholders(ids []models.DocumentID) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = string(id)
	}
	return strings.Join(placeholders, ", "), args
}

const documentColumns = `id,
	CAST(to_json(embedding) AS VARCHAR) AS embedding_json,
	CAST(to_json(tags) AS VARCHAR) AS tags_json,
	CAST(properties AS VARCHAR) AS properties_json`

// GetInteracted implements DocumentStore.
func (s *DuckDBStore) GetInteracted(ctx context.Context, ids []models.DocumentID) (docs []models.Document, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", documentsTable, time.Since(start), err) }()

	in, args := idPlaceholders(ids)
	rows, err := s.conn.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id IN ("+in+")", args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[models.DocumentID]models.Document, len(ids))
	for rows.Next() {
		var id, emb, tags string
		var props sql.NullString
		if err = rows.Scan(&id, &emb, &tags, &props); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, decErr := decodeDocument(id, emb, tags, props)
		if decErr != nil {
			err = decErr
			return nil, err
		}
		byID[doc.ID] = doc
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	docs = make([]models.Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func decodeDocument(id, emb, tags string, props sql.NullString) (models.Document, error) {
	doc := models.Document{ID: models.DocumentID(id)}
	if err := json.Unmarshal([]byte(emb), &doc.Embedding); err != nil {
		return doc, fmt.Errorf("decode embedding of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return doc, fmt.Errorf("decode tags of %s: %w", id, err)
	}
	if props.Valid && props.String != "" {
		if err := json.Unmarshal([]byte(props.String), &doc.Properties); err != nil {
			return doc, fmt.Errorf("decode properties of %s: %w", id, err)
		}
	}
	return doc, nil
}

// KNN implements Searcher with list_cosine_similarity. Documents whose
// embedding dimension differs from the query are skipped.
func (s *DuckDBStore) KNN(ctx context.Context, params KnnParams) (docs []models.PersonalizedDocument, err error) {
	if params.K <= 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("knn", documentsTable, time.Since(start), err) }()

	query, args, err := buildKnnQuery(&params)
	if err != nil {
		return nil, err
	}
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	defer rows.Close()

	docs = make([]models.PersonalizedDocument, 0, params.K)
	for rows.Next() {
		var id, emb, tags string
		var props sql.NullString
		var score float64
		if err = rows.Scan(&id, &emb, &tags, &props, &score); err != nil {
			return nil, fmt.Errorf("scan knn row: %w", err)
		}
		doc, decErr := decodeDocument(id, emb, tags, props)
		if decErr != nil {
			err = decErr
			return nil, err
		}
		docs = append(docs, doc.Personalized(float32(score)))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return docs, nil
}

func buildKnnQuery(params *KnnParams) (string, []any, error) {
	query, err := json.Marshal(params.Embedding)
	if err != nil {
		return "", nil, fmt.Errorf("marshal query embedding: %w", err)
	}

	whereClauses := []string{"len(embedding) = ?"}
	args := []any{len(params.Embedding)}

	clause, filterArgs, err := filter.SQL(params.EffectiveFilter(), "id", "properties")
	if err != nil {
		return "", nil, err
	}
	if clause != "TRUE" {
		whereClauses = append(whereClauses, clause)
		args = append(args, filterArgs...)
	}
	if len(params.Excluded) > 0 {
		in, excluded := idPlaceholders(params.Excluded)
		whereClauses = append(whereClauses, "id NOT IN ("+in+")")
		args = append(args, excluded...)
	}

	scoreClause := ""
	var scoreArgs []any
	if params.MinSimilarity != nil {
		scoreClause = "WHERE score >= ?"
		scoreArgs = append(scoreArgs, float64(*params.MinSimilarity))
	}

	sqlText := fmt.Sprintf(`
		SELECT * FROM (
			SELECT %s, list_cosine_similarity(embedding, CAST(CAST(? AS JSON) AS FLOAT[])) AS score
			FROM documents
			WHERE %s
		) %s
		ORDER BY score DESC, id DESC
		LIMIT ?`, documentColumns, strings.Join(whereClauses, " AND "), scoreClause)

	all := make([]any, 0, len(args)+len(scoreArgs)+2)
	all = append(all, string(query))
	all = append(all, args...)
	all = append(all, scoreArgs...)
	all = append(all, params.K)
	return sqlText, all, nil
}
