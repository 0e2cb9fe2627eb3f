package embedding

import (
	"fmt"

	"medibot/internal/config"
	"medibot/internal/rag/interfaces"
	"medibot/pkg/logger"
)

// New selects the embedding model for the whole run. This is a
// deployment-mode switch made once at startup: a configured provider
// credential selects the remote model, otherwise the local ollama model
// is used for every call.
func New(cfg config.EmbeddingConfig, log *logger.Logger) (interfaces.Embedding, error) {
	if cfg.APIKey != "" {
		log.Info(fmt.Sprintf("Using remote embedding provider with model %s", cfg.Model))
		return NewRemoteModel(cfg.EndpointURL, cfg.APIKey, cfg.Model, cfg.MaxRetries, cfg.RequestTimeout), nil
	}

	log.Info(fmt.Sprintf("No provider credential configured, using local ollama model %s", cfg.LocalModel))
	model, err := NewOllamaModel(cfg.LocalModel, cfg.OllamaURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create local embedding model: %w", err)
	}
	return model, nil
}
