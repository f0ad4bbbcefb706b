// Package embedding wraps the OpenAI-compatible embeddings API behind the
// small interface the search core consumes. Any provider exposing the
// /v1/embeddings contract works via BaseURL.
package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrProviderUnavailable wraps every transport-level failure so callers can
// branch into the degraded text-search path with a single errors.Is check.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string // empty = api.openai.com
	Model      string
	Dimensions int
}

type Client struct {
	api        *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewClient creates an embedding client for an OpenAI-compatible endpoint.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:        openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
	}
}

// Embed converts a query string into a vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	resp, err := c.api.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", ErrProviderUnavailable)
	}
	return resp.Data[0].Embedding, nil
}

func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, ErrProviderUnavailable)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding request error %d: %w",
			reqErr.HTTPStatusCode, ErrProviderUnavailable)
	}
	return fmt.Errorf("embedding request failed: %v: %w", err, ErrProviderUnavailable)
}
