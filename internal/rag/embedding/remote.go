package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"medibot/internal/rag/interfaces"
)

// RemoteModel calls a hosted embedding provider over HTTP.
//
// Transient failures (network errors, 429, 5xx) are retried with an
// exponential, attempt-indexed backoff up to the configured cap. Other
// client errors (4xx) are never retried and propagate immediately.
type RemoteModel struct {
	// Backoff is the unit multiplied by 2^attempt between retries.
	Backoff time.Duration

	client *resty.Client
	url    string
	model  string
}

// NewRemoteModel creates a RemoteModel for the given endpoint and model.
func NewRemoteModel(endpointURL, apiKey, model string, maxRetries int, timeout time.Duration) *RemoteModel {
	m := &RemoteModel{
		Backoff: time.Second,
		url:     endpointURL,
		model:   model,
	}

	m.client = resty.New().
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(maxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code == 429 || code >= 500
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			return m.Backoff * time.Duration(1<<r.Request.Attempt), nil
		})

	return m
}

// Embed returns the provider's vector for a single text.
func (m *RemoteModel) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model": m.model,
			"input": text,
		}).
		Post(m.url)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding provider returned status %d: %s", resp.StatusCode(), truncate(resp.Body(), 1000))
	}

	return ParseEmbedding(resp.Body())
}

var _ interfaces.Embedding = (*RemoteModel)(nil)
