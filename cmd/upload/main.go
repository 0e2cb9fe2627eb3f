package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"medibot/internal/config"
	"medibot/internal/rag/indexer"
	"medibot/internal/rag/schema"
	"medibot/internal/rag/vectorstore"
	"medibot/pkg/logger"
)

func main() {
	logger.Init(logrus.InfoLevel)
	log := logger.New("upload", "")
	cfg := config.Load()

	records, err := schema.ReadEmbeddings(cfg.Index.EmbeddingsFile, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to read embeddings (run the embed stage first): %v", err))
	}

	ctx := context.Background()
	index, err := vectorstore.NewMilvusIndex(ctx, cfg.Index.Address, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to connect to vector index service: %v", err))
	}
	defer index.Close()

	ix := indexer.New(index, cfg.Index.BatchSize, log)
	resolved, err := ix.ReconcileAndUpload(ctx, records, cfg.Index.Name)
	if err != nil {
		log.Fatal(fmt.Sprintf("Upload failed: %v", err))
	}
	log.Info(fmt.Sprintf("Uploaded %d vectors to index %q", len(records), resolved))
}
