package knowledge

import "time"

// Document is one stored chunk, including its similarity to the query
// when returned from Search.
type Document struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	SourceFile  string         `json:"source_file"`
	ChunkIndex  int            `json:"chunk_index"`
	TotalChunks int            `json:"total_chunks"`
	Metadata    map[string]any `json:"metadata"`
	Similarity  float64        `json:"similarity"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Source summarizes one ingested file.
type Source struct {
	SourceFile string `json:"source_file"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// Chunk is one piece of a document prepared for insertion. Metadata
// carries document-level metadata to merge into the stored chunk
// metadata next to the word and character counts.
type Chunk struct {
	Content   string
	Embedding []float32
	Index     int
	WordCount int
	CharCount int
	Metadata  map[string]any
}

// SourceDocument is one document submitted for ingestion.
type SourceDocument struct {
	SourceFile string         `json:"source_file"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
}

// IngestResult reports the outcome of ingesting one source file. Err is
// set for per-document failures during batch ingestion.
type IngestResult struct {
	SourceFile     string `json:"source_file"`
	ChunksInserted int    `json:"chunks_inserted"`
	Skipped        bool   `json:"skipped"`
	Err            error  `json:"-"`
}
