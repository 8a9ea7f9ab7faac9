package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrEmptyDocument indicates the document contained no text after cleaning.
var ErrEmptyDocument = errors.New("document is empty")

// ErrSourceExists indicates the source file was already ingested.
// Re-ingesting requires deleting the existing chunks first.
var ErrSourceExists = errors.New("source file already ingested")

// Ingestor prepares documents for search: clean, chunk, embed, store.
type Ingestor struct {
	store    *Store
	embedder Embedder
	logger   *slog.Logger
}

// NewIngestor creates an ingestor writing through the given store.
func NewIngestor(store *Store, embedder Embedder, logger *slog.Logger) *Ingestor {
	return &Ingestor{store: store, embedder: embedder, logger: logger}
}

// Ingest cleans and chunks the document content, embeds every chunk,
// and inserts the result. An empty title falls back to the source file
// name; document metadata is merged into every stored chunk. A source
// that was already ingested returns ErrSourceExists.
func (ing *Ingestor) Ingest(ctx context.Context, doc SourceDocument) (*IngestResult, error) {
	if strings.TrimSpace(doc.SourceFile) == "" {
		return nil, errors.New("source file name is required")
	}
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = doc.SourceFile
	}

	cleaned := CleanText(doc.Content)
	if cleaned == "" {
		return nil, ErrEmptyDocument
	}

	exists, err := ing.store.HasSource(ctx, doc.SourceFile)
	if err != nil {
		return nil, err
	}
	if exists {
		return &IngestResult{SourceFile: doc.SourceFile, Skipped: true},
			fmt.Errorf("%w: %s", ErrSourceExists, doc.SourceFile)
	}

	pieces := ChunkText(cleaned, DefaultChunkSize, DefaultChunkOverlap)
	ing.logger.Info("ingesting document",
		"source_file", doc.SourceFile,
		"chunks", len(pieces))

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := ing.embedder.Embed(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{
			Content:   piece,
			Embedding: embedding,
			Index:     i,
			WordCount: len(strings.Fields(piece)),
			CharCount: len(piece),
			Metadata:  doc.Metadata,
		})

		if (i+1)%10 == 0 {
			ing.logger.Debug("embedding progress",
				"source_file", doc.SourceFile,
				"done", i+1,
				"total", len(pieces))
		}
	}

	if err := ing.store.InsertChunks(ctx, doc.SourceFile, doc.Title, chunks); err != nil {
		return nil, err
	}

	return &IngestResult{SourceFile: doc.SourceFile, ChunksInserted: len(chunks)}, nil
}

// batchDelay spaces documents apart during batch ingestion to stay
// within the embedding API quota.
const batchDelay = 200 * time.Millisecond

// IngestAll ingests the documents sequentially, pausing batchDelay
// between them. Per-document failures are recorded in the corresponding
// result's Err field and do not abort the batch.
func (ing *Ingestor) IngestAll(ctx context.Context, docs []SourceDocument) []IngestResult {
	results := make([]IngestResult, 0, len(docs))
	for i, doc := range docs {
		if i > 0 {
			select {
			case <-ctx.Done():
				results = append(results, IngestResult{SourceFile: doc.SourceFile, Err: ctx.Err()})
				continue
			case <-time.After(batchDelay):
			}
		}

		res, err := ing.Ingest(ctx, doc)
		if err != nil {
			r := IngestResult{SourceFile: doc.SourceFile, Err: err}
			if res != nil {
				r.Skipped = res.Skipped
			}
			results = append(results, r)
			continue
		}
		results = append(results, *res)
	}
	return results
}
