package embedder

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the embedding circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// DefaultBreakerConfig trips after 60% failures across at least 3 requests
// and retries after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// BreakerClient wraps a Client with circuit breaking so a failing
// embedding provider fails fast instead of holding up every search.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// WrapWithBreaker wraps client with a circuit breaker named after the
// embedding model.
func WrapWithBreaker(client Client, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	name := client.ModelInfo().Name
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("embedder circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

func (c *BreakerClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.GenerateEmbedding(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

func (c *BreakerClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.GenerateEmbeddings(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return out.([][]float32), nil
}

func (c *BreakerClient) ModelInfo() ModelInfo { return c.client.ModelInfo() }

func (c *BreakerClient) Close() error { return c.client.Close() }
