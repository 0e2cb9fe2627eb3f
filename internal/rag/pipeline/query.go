package pipeline

import (
	"context"
	"fmt"

	"medibot/internal/rag/contextbuilder"
	"medibot/internal/rag/generator"
	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/retriever"
	"medibot/pkg/logger"
)

// QueryPipeline runs the full question path: embed the question, retrieve
// the nearest chunks, assemble a bounded context, and generate the answer.
type QueryPipeline struct {
	embedder        interfaces.Embedding
	retriever       *retriever.Retriever
	generator       *generator.Generator
	topK            int
	maxContextChars int
	log             *logger.Logger
}

// QueryResult carries the generated answer together with the assembled
// context that grounded it.
type QueryResult struct {
	Answer  string
	Context string
}

// NewQueryPipeline wires the query-time stages together.
func NewQueryPipeline(embedder interfaces.Embedding, r *retriever.Retriever, g *generator.Generator, topK, maxContextChars int, log *logger.Logger) *QueryPipeline {
	return &QueryPipeline{
		embedder:        embedder,
		retriever:       r,
		generator:       g,
		topK:            topK,
		maxContextChars: maxContextChars,
		log:             log,
	}
}

// Ask answers the question against the indexed documents. Embedding and
// retrieval failures are returned to the caller; generation failures are
// absorbed by the generator's fallback and never surface here.
func (p *QueryPipeline) Ask(ctx context.Context, question string) (*QueryResult, error) {
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := p.retriever.Retrieve(ctx, vector, p.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve matches: %w", err)
	}

	contextText := contextbuilder.Build(matches, p.maxContextChars)
	p.log.Debug(fmt.Sprintf("Assembled %d context chars from %d matches", len(contextText), len(matches)))

	answer := p.generator.Answer(ctx, contextText, question)
	return &QueryResult{Answer: answer, Context: contextText}, nil
}
