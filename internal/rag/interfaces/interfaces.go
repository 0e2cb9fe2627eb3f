package interfaces

import (
	"context"

	"medibot/internal/rag/schema"
)

// Embedding is the interface for a text embedding model. Implementations
// must be deterministic for a fixed model and version.
type Embedding interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OCR recognizes text on a single PDF page, used when native extraction
// yields too little content.
type OCR interface {
	Recognize(ctx context.Context, pdfPath string, page int) (string, error)
}

// Index is the contract of the remote vector index service.
type Index interface {
	// ListIndexes returns the names of all existing indexes.
	ListIndexes(ctx context.Context) ([]string, error)
	// Dimension reports the vector dimensionality of an index, best-effort.
	// A return of (0, nil) means the dimension could not be determined;
	// that is a distinct outcome, not an error.
	Dimension(ctx context.Context, name string) (int, error)
	// Create provisions a new index with the given dimension and a
	// cosine-similarity metric.
	Create(ctx context.Context, name string, dimension int) error
	// Upsert inserts or replaces records by id in a single call.
	Upsert(ctx context.Context, name string, records []schema.EmbeddingRecord) error
	// Query returns the topK nearest matches with metadata included,
	// ordered by descending similarity.
	Query(ctx context.Context, name string, vector []float32, topK int) ([]schema.Match, error)
}

// LLM is the interface for a generative language model.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
