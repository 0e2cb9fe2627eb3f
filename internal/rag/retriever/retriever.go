package retriever

import (
	"context"
	"fmt"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// Retriever fetches the nearest chunks for a query vector. It sits on the
// live request path, so a query failure propagates to the caller instead
// of being retried.
type Retriever struct {
	index     interfaces.Index
	indexName string
	log       *logger.Logger
}

// New creates a Retriever bound to one index.
func New(index interfaces.Index, indexName string, log *logger.Logger) *Retriever {
	return &Retriever{index: index, indexName: indexName, log: log}
}

// Retrieve returns up to topK matches ordered by descending similarity,
// each normalized so that missing fields default to empty values rather
// than failing downstream consumers.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32, topK int) ([]schema.Match, error) {
	matches, err := r.index.Query(ctx, r.indexName, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}

	normalized := make([]schema.Match, len(matches))
	for i, m := range matches {
		switch m.Metadata.(type) {
		case map[string]interface{}, string:
			// already a shape the assembler understands
		default:
			m.Metadata = map[string]interface{}{}
		}
		normalized[i] = m
	}

	r.log.Debug(fmt.Sprintf("Retrieved %d matches from index %q", len(normalized), r.indexName))
	return normalized, nil
}
