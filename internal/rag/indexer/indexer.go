package indexer

import (
	"context"
	"fmt"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// Indexer reconciles an index's dimensionality against a batch of
// embedding records and bulk-loads them.
//
// An existing index is never mutated or deleted: when its dimension
// conflicts with the new records, or cannot be determined at all, uploads
// are redirected to a derived index name instead.
type Indexer struct {
	index     interfaces.Index
	batchSize int
	log       *logger.Logger
}

// New creates an Indexer uploading in batches of batchSize records.
func New(index interfaces.Index, batchSize int, log *logger.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Indexer{index: index, batchSize: batchSize, log: log}
}

// ReconcileAndUpload resolves the index the records belong in, creating it
// if needed, uploads every record, and returns the index name actually
// used. A batch failure propagates; batches already upserted stay in the
// index, which is safe to re-run because ids are stable.
func (ix *Indexer) ReconcileAndUpload(ctx context.Context, records []schema.EmbeddingRecord, target string) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no embedding records to upload")
	}
	dim := len(records[0].Vector)
	if dim == 0 {
		return "", fmt.Errorf("first record %q has an empty vector", records[0].ID)
	}

	existing, err := ix.index.ListIndexes(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list indexes: %w", err)
	}

	resolved, err := ix.resolveTarget(ctx, existing, target, dim)
	if err != nil {
		return "", err
	}
	if resolved != target {
		ix.log.Warn(fmt.Sprintf("Index %q was preserved; uploading to %q instead", target, resolved))
	}

	if !contains(existing, resolved) {
		ix.log.Info(fmt.Sprintf("Creating index %q with dimension %d", resolved, dim))
		if err := ix.index.Create(ctx, resolved, dim); err != nil {
			return "", fmt.Errorf("failed to create index %q: %w", resolved, err)
		}
	}

	ix.log.Info(fmt.Sprintf("Uploading %d vectors to index %q", len(records), resolved))
	for start := 0; start < len(records); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := ix.index.Upsert(ctx, resolved, records[start:end]); err != nil {
			return "", fmt.Errorf("failed to upsert batch starting at record %d: %w", start, err)
		}
	}

	return resolved, nil
}

// resolveTarget decides which index name the records may be written to.
// A missing target is used as-is (it will be created). An existing target
// whose dimension matches is reused. A mismatched or undeterminable
// dimension redirects to "<target>-d<dim>": never overwrite an index of
// unknown shape.
func (ix *Indexer) resolveTarget(ctx context.Context, existing []string, target string, dim int) (string, error) {
	if !contains(existing, target) {
		return target, nil
	}

	existingDim, err := ix.index.Dimension(ctx, target)
	if err != nil {
		return "", fmt.Errorf("failed to inspect index %q: %w", target, err)
	}
	if existingDim == 0 {
		ix.log.Warn(fmt.Sprintf("Could not determine dimension of existing index %q", target))
		return fmt.Sprintf("%s-d%d", target, dim), nil
	}
	if existingDim != dim {
		ix.log.Warn(fmt.Sprintf("Index %q has dimension %d but records have %d", target, existingDim, dim))
		return fmt.Sprintf("%s-d%d", target, dim), nil
	}
	return target, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
