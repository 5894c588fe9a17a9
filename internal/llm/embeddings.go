package llm

import (
	"context"
	"fmt"
	"net/http"
)

// EmbeddingsClient embeds single texts through an OpenAI-compatible /v1/embeddings endpoint.
type EmbeddingsClient struct {
	BaseURL string
	APIKey  string
	Model   string
	// Dimensions is the vector size the Qdrant collection was created with.
	Dimensions int
	client     *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. Every returned vector must have
// exactly dimensions entries.
func NewEmbeddingsClient(baseURL, apiKey, model string, dimensions int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Dimensions: dimensions,
		client:     http.DefaultClient,
	}
}

// EmbeddingsRequest is the request body. Input is a single text.
type EmbeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// EmbeddingData is one vector of the response.
type EmbeddingData struct {
	Embedding []float32 `json:"embedding"`
}

// EmbeddingsResponse is the response body.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Embed returns the vector for text.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("nothing to embed")
	}

	var resp EmbeddingsResponse
	if err := postJSON(ctx, c.client, c.BaseURL, "/v1/embeddings", c.APIKey,
		EmbeddingsRequest{Model: c.Model, Input: text}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(resp.Data))
	}
	vec := resp.Data[0].Embedding
	if len(vec) != c.Dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, collection expects %d", len(vec), c.Dimensions)
	}
	return vec, nil
}

// Probe embeds a fixed text to check that the server is reachable and produces vectors of
// the configured size.
func (c *EmbeddingsClient) Probe(ctx context.Context) error {
	if _, err := c.Embed(ctx, "probe"); err != nil {
		return fmt.Errorf("embeddings service check failed: %w", err)
	}
	return nil
}
