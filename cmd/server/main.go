package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"medibot/internal/config"
	"medibot/internal/rag/embedding"
	"medibot/internal/rag/generator"
	"medibot/internal/rag/llm"
	"medibot/internal/rag/pipeline"
	"medibot/internal/rag/retriever"
	"medibot/internal/rag/vectorstore"
	"medibot/internal/server"
	"medibot/pkg/logger"
)

func main() {
	logger.Init(logrus.InfoLevel)
	log := logger.New("server", "")
	cfg := config.Load()
	log.Info(fmt.Sprintf("Starting Medibot (index: %s) on port %d", cfg.Index.Name, cfg.Server.Port))

	index, err := vectorstore.NewMilvusIndex(context.Background(), cfg.Index.Address, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to connect to vector index service: %v", err))
	}
	defer index.Close()

	embedder, err := embedding.New(cfg.Embedding, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create embedding model: %v", err))
	}

	genModel, err := llm.NewOllama(cfg.Server.GenModel, cfg.Server.OllamaURL, cfg.Server.GenTimeout)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create generation model: %v", err))
	}

	p := pipeline.NewQueryPipeline(
		embedder,
		retriever.New(index, cfg.Index.Name, log),
		generator.New(genModel, log),
		cfg.Server.TopK,
		cfg.Server.MaxContextChars,
		log,
	)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.NewAPI(p, cfg.Index.Name, log))
	if err := router.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatal(fmt.Sprintf("HTTP server stopped: %v", err))
	}
}
