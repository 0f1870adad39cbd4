// Package embedder provides text embedding clients used by semantic search.
//
// The Client interface abstracts over embedding providers. The OpenAI
// implementation supports OpenAI-compatible services through a custom
// base URL, and WrapWithBreaker adds circuit breaking so a failing
// provider degrades semantic search instead of stalling it.
package embedder

import "context"

// ModelInfo describes the embedding model behind a client. Vectors from
// different models are not comparable, so callers record this alongside
// stored embeddings.
type ModelInfo struct {
	Name       string
	Dimensions int
	Version    string
}

// Client generates vector embeddings for text.
type Client interface {
	// GenerateEmbedding embeds a single text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateEmbeddings embeds a batch of texts, preserving order.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// ModelInfo reports the model producing the vectors.
	ModelInfo() ModelInfo

	Close() error
}
