// Package knowledge implements vector search over ingested documents.
//
// Documents are chunked, embedded, and stored in the documents table
// with a pgvector column. Search embeds the query and ranks stored
// chunks by cosine similarity.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

const (
	// DefaultTopK is the result count when the caller does not specify one.
	DefaultTopK = 5

	// MaxTopK caps the result count regardless of what was requested.
	MaxTopK = 10

	// SimilarityThreshold filters out weak matches. Cosine similarity
	// below this value is treated as noise.
	SimilarityThreshold = 0.5

	// MaxSources caps the list_available_topics result.
	MaxSources = 15
)

// Embedder converts text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Querier is the subset of pgxpool.Pool the store depends on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides access to the documents table.
type Store struct {
	db       Querier
	embedder Embedder
	logger   *slog.Logger
}

// NewStore creates a knowledge store.
func NewStore(db Querier, embedder Embedder, logger *slog.Logger) *Store {
	return &Store{db: db, embedder: embedder, logger: logger}
}

// Search embeds the query and returns the most similar chunks. topK is
// clamped to [1, MaxTopK]; values below 1 fall back to DefaultTopK.
// Matches below SimilarityThreshold are excluded.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	if topK < 1 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	start := time.Now()
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.db.Query(ctx, `
		SELECT id, title, content, source_file, chunk_index, total_chunks,
		       metadata, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE 1 - (embedding <=> $1) > $2
		ORDER BY embedding <=> $1, id
		LIMIT $3`,
		vec, SimilarityThreshold, topK)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.SourceFile, &d.ChunkIndex,
			&d.TotalChunks, &d.Metadata, &d.CreatedAt, &d.Similarity); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	s.logger.Debug("knowledge search completed",
		"results", len(docs),
		"top_k", topK,
		"duration", time.Since(start))

	return docs, nil
}

// ListSources returns up to MaxSources distinct source files with their
// titles and chunk counts, ordered by source file name.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.Query(ctx, `
		SELECT source_file, MIN(title) AS title, COUNT(*) AS chunk_count
		FROM documents
		GROUP BY source_file
		ORDER BY source_file
		LIMIT $1`,
		MaxSources)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.SourceFile, &src.Title, &src.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// CountSources returns the number of distinct source files, regardless
// of the ListSources limit.
func (s *Store) CountSources(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT source_file) FROM documents`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sources: %w", err)
	}
	return n, nil
}

// HasSource reports whether any chunk of the given source file exists.
func (s *Store) HasSource(ctx context.Context, sourceFile string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE source_file = $1)`,
		sourceFile).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking source existence: %w", err)
	}
	return exists, nil
}

// InsertChunks stores the prepared chunks of one source file. Every row
// records the same total chunk count for the document.
func (s *Store) InsertChunks(ctx context.Context, sourceFile, title string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to insert")
	}

	for _, c := range chunks {
		metadata := make(map[string]any, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			metadata[k] = v
		}
		metadata["word_count"] = c.WordCount
		metadata["char_count"] = c.CharCount

		_, err := s.db.Exec(ctx, `
			INSERT INTO documents
				(title, content, embedding, source_file, chunk_index, total_chunks, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			title, c.Content, pgvector.NewVector(c.Embedding), sourceFile,
			c.Index, len(chunks), metadata)
		if err != nil {
			return fmt.Errorf("inserting chunk %d of %s: %w", c.Index, sourceFile, err)
		}
	}

	return nil
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}
