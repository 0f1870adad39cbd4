package embedder

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	fail  bool
	calls int
}

func (s *stubClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("provider down")
	}
	return []float32{1, 0}, nil
}

func (s *stubClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("provider down")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *stubClient) ModelInfo() ModelInfo {
	return ModelInfo{Name: "stub-model", Dimensions: 2, Version: "1"}
}

func (s *stubClient) Close() error { return nil }

func TestBreakerPassesThrough(t *testing.T) {
	stub := &stubClient{}
	c := WrapWithBreaker(stub, DefaultBreakerConfig(), slog.Default())

	vec, err := c.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	vecs, err := c.GenerateEmbeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, "stub-model", c.ModelInfo().Name)
}

func TestBreakerTripsOnRepeatedFailure(t *testing.T) {
	stub := &stubClient{fail: true}
	cfg := DefaultBreakerConfig()
	cfg.Timeout = time.Hour
	c := WrapWithBreaker(stub, cfg, slog.Default())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.GenerateEmbedding(ctx, "x")
		require.Error(t, err)
	}

	before := stub.calls
	_, err := c.GenerateEmbedding(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	// Open breaker never reaches the provider.
	assert.Equal(t, before, stub.calls)
}

func TestOpenAIClientDefaults(t *testing.T) {
	c, err := NewOpenAIClient("test-key", OpenAIConfig{})
	require.NoError(t, err)
	info := c.ModelInfo()
	assert.Equal(t, "text-embedding-3-small", info.Name)
	assert.Equal(t, 1536, info.Dimensions)

	_, err = NewOpenAIClient("", OpenAIConfig{})
	assert.Error(t, err)
}
