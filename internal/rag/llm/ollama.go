package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"medibot/internal/rag/interfaces"
)

// Ollama is a generation client for a local ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates an Ollama client. An empty baseURL defaults to the
// standard local ollama address.
func NewOllama(model, baseURL string, timeout time.Duration) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{Timeout: timeout}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Generate sends the prompt and returns the complete, non-streamed
// response text.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var result string
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp ollama.GenerateResponse) error {
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	return result, nil
}

var _ interfaces.LLM = (*Ollama)(nil)
