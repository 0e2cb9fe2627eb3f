package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"medibot/internal/config"
	"medibot/internal/rag/chunker"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

func main() {
	logger.Init(logrus.InfoLevel)
	log := logger.New("extract", "")
	cfg := config.Load()

	pdfs, err := filepath.Glob(filepath.Join(cfg.Chunking.PDFDir, "*.pdf"))
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to scan %s: %v", cfg.Chunking.PDFDir, err))
	}
	if len(pdfs) == 0 {
		log.Fatal(fmt.Sprintf("No PDF files found in %s", cfg.Chunking.PDFDir))
	}

	ocr := chunker.NewTesseractOCR(cfg.Chunking.PopplerPath, cfg.Chunking.OCRDPI)
	c, err := chunker.New(cfg.Chunking.SizeWords, cfg.Chunking.OverlapWords, cfg.Chunking.OCRThreshold, ocr, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Invalid chunking configuration: %v", err))
	}

	ctx := context.Background()
	var chunks []schema.Chunk
	for _, path := range pdfs {
		docChunks, err := c.ChunkPDF(ctx, path)
		if err != nil {
			log.Error(fmt.Sprintf("Skipping %s: %v", filepath.Base(path), err))
			continue
		}
		log.Info(fmt.Sprintf("Extracted %d chunks from %s", len(docChunks), filepath.Base(path)))
		chunks = append(chunks, docChunks...)
	}

	if err := schema.WriteChunks(cfg.Chunking.ChunksFile, chunks); err != nil {
		log.Fatal(fmt.Sprintf("Failed to write chunks: %v", err))
	}
	log.Info(fmt.Sprintf("Wrote %d chunks from %d documents to %s", len(chunks), len(pdfs), cfg.Chunking.ChunksFile))
}
