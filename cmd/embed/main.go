package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"medibot/internal/config"
	"medibot/internal/rag/embedding"
	"medibot/internal/rag/pipeline"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

func main() {
	logger.Init(logrus.InfoLevel)
	log := logger.New("embed", "")
	cfg := config.Load()

	chunks, err := schema.ReadChunks(cfg.Embedding.ChunksFile, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to read chunks (run the extract stage first): %v", err))
	}
	if len(chunks) == 0 {
		log.Fatal(fmt.Sprintf("No chunks found in %s", cfg.Embedding.ChunksFile))
	}
	log.Info(fmt.Sprintf("Embedding %d chunks", len(chunks)))

	embedder, err := embedding.New(cfg.Embedding, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create embedding model: %v", err))
	}

	p := pipeline.NewEmbedPipeline(embedder, cfg.Embedding.PreviewChars, cfg.Embedding.PacingDelay, log)
	records, err := p.Run(context.Background(), chunks)
	if err != nil {
		log.Fatal(fmt.Sprintf("Embedding run failed: %v", err))
	}

	if err := schema.WriteEmbeddings(cfg.Embedding.OutFile, records); err != nil {
		log.Fatal(fmt.Sprintf("Failed to write embeddings: %v", err))
	}
	log.Info(fmt.Sprintf("Wrote %d embedding records to %s", len(records), cfg.Embedding.OutFile))
}
