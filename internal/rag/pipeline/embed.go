package pipeline

import (
	"context"
	"fmt"
	"time"

	"medibot/internal/rag/contextbuilder"
	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// EmbedPipeline turns extracted chunks into embedding records ready for
// upload. Requests are paced to stay under provider rate limits.
type EmbedPipeline struct {
	embedder     interfaces.Embedding
	previewChars int
	pace         time.Duration
	log          *logger.Logger
}

// NewEmbedPipeline creates an EmbedPipeline. previewChars bounds the
// metadata preview stored alongside each vector; pace is the delay
// between consecutive embedding requests.
func NewEmbedPipeline(embedder interfaces.Embedding, previewChars int, pace time.Duration, log *logger.Logger) *EmbedPipeline {
	return &EmbedPipeline{embedder: embedder, previewChars: previewChars, pace: pace, log: log}
}

// Run embeds every chunk in order. A single failed chunk aborts the run;
// the embedder has already exhausted its own retries by then.
func (p *EmbedPipeline) Run(ctx context.Context, chunks []schema.Chunk) ([]schema.EmbeddingRecord, error) {
	records := make([]schema.EmbeddingRecord, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := p.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
		}

		preview := contextbuilder.Truncate(chunk.Text, p.previewChars)
		records = append(records, schema.EmbeddingRecord{
			ID:     chunk.ID,
			Vector: vector,
			Metadata: map[string]interface{}{
				schema.MetadataKeySource:   chunk.Source,
				schema.MetadataKeyPage:     chunk.Page,
				schema.MetadataKeySequence: chunk.Sequence,
				schema.MetadataKeyPreview:  preview,
			},
		})

		if p.pace > 0 && i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.pace):
			}
		}
	}
	p.log.Info(fmt.Sprintf("Embedded %d chunks", len(records)))
	return records, nil
}
