package embedder

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI embedding client.
type OpenAIConfig struct {
	// Model names the embedding model. Defaults to text-embedding-3-small.
	Model string

	// Dimensions is the expected vector width. Defaults to 1536.
	Dimensions int

	// BaseURL points the client at an OpenAI-compatible service.
	BaseURL string

	// Version tags stored embeddings so a model upgrade invalidates them.
	Version string
}

// OpenAIClient implements Client against the OpenAI embeddings API.
type OpenAIClient struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAIClient creates an embedding client. Supports OpenAI-compatible
// services through a custom BaseURL.
func NewOpenAIClient(apiKey string, config OpenAIConfig) (*OpenAIClient, error) {
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimensions == 0 {
		config.Dimensions = 1536
	}
	if config.Version == "" {
		config.Version = "1"
	}

	var client *openai.Client
	if config.BaseURL != "" {
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedder requires an API key")
		}
		client = openai.NewClient(apiKey)
	}

	return &OpenAIClient{client: client, config: config}, nil
}

func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

func (c *OpenAIClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (c *OpenAIClient) ModelInfo() ModelInfo {
	return ModelInfo{
		Name:       c.config.Model,
		Dimensions: c.config.Dimensions,
		Version:    c.config.Version,
	}
}

func (c *OpenAIClient) Close() error { return nil }
