package memento

import (
	"context"
	"log/slog"

	"github.com/vargamick/poster-memento-sub005/pkg/analytics"
	"github.com/vargamick/poster-memento-sub005/pkg/decay"
	"github.com/vargamick/poster-memento-sub005/pkg/embedder"
	"github.com/vargamick/poster-memento-sub005/pkg/paths"
	"github.com/vargamick/poster-memento-sub005/pkg/search"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
	"github.com/vargamick/poster-memento-sub005/pkg/vector"
)

// Engine is the query surface consumed by the protocol layers.
type Engine interface {
	// Search delegates to the default strategy.
	Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error)

	// SearchWithStrategy delegates to a named strategy, falling back to
	// the default with a warning when the name is unknown.
	SearchWithStrategy(ctx context.Context, query, strategy string, opts *types.SearchOptions) ([]types.ScoredEntity, error)

	// AvailableStrategies lists registered strategy names.
	AvailableStrategies() []string

	IsStrategyAvailable(name string) bool

	DefaultStrategy() string

	// HybridConfig returns the current fusion weights; false when hybrid
	// search is not available.
	HybridConfig() (search.HybridConfig, bool)

	// UpdateHybridConfig applies a partial fusion weight update atomically.
	UpdateHybridConfig(patch search.HybridConfigPatch) (search.HybridConfig, error)

	// FindPaths discovers paths between two entities.
	FindPaths(ctx context.Context, from, to string, opts *paths.Options) (*paths.Result, error)

	// NodeAnalytics computes the analytics bundle for one entity.
	NodeAnalytics(ctx context.Context, entity string, opts *analytics.Options) (*types.NodeAnalytics, error)

	// Close releases backend connections.
	Close(ctx context.Context) error
}

// Config carries the optional pieces of a Client. The zero value is
// usable: decay on with defaults, graph-only search.
type Config struct {
	// Vector and Embedder enable the vector and hybrid strategies. Both
	// must be set; a lone half is ignored.
	Vector   vector.Store
	Embedder embedder.Client

	// Decay overrides the default decay model.
	Decay *decay.Model

	// DefaultStrategy names the strategy Search uses.
	DefaultStrategy string

	// Hybrid seeds the fusion weights.
	Hybrid search.HybridConfig

	Logger *slog.Logger
}

// Client is the default Engine implementation.
type Client struct {
	store     storage.StorageProvider
	vector    vector.Store
	embedder  embedder.Client
	decay     *decay.Model
	search    *search.Service
	paths     *paths.Finder
	analytics *analytics.Engine
	logger    *slog.Logger
}

// NewClient wires the engine together around a storage provider.
func NewClient(store storage.StorageProvider, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Decay
	if model == nil {
		model = decay.New(decay.DefaultHalfLife, decay.DefaultFloor)
	}

	searchService, err := search.NewService(search.ServiceConfig{
		Storage:         store,
		Vector:          cfg.Vector,
		Embedder:        cfg.Embedder,
		DefaultStrategy: cfg.DefaultStrategy,
		Hybrid:          cfg.Hybrid,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		store:     store,
		vector:    cfg.Vector,
		embedder:  cfg.Embedder,
		decay:     model,
		search:    searchService,
		paths:     paths.NewFinder(store, model, logger),
		analytics: analytics.NewEngine(store, model, logger),
		logger:    logger,
	}, nil
}

func (c *Client) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	return c.search.Search(ctx, query, opts)
}

func (c *Client) SearchWithStrategy(ctx context.Context, query, strategy string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	return c.search.SearchWithStrategy(ctx, query, strategy, opts)
}

func (c *Client) AvailableStrategies() []string { return c.search.AvailableStrategies() }

func (c *Client) IsStrategyAvailable(name string) bool { return c.search.IsStrategyAvailable(name) }

func (c *Client) DefaultStrategy() string { return c.search.DefaultStrategy() }

func (c *Client) HybridConfig() (search.HybridConfig, bool) { return c.search.HybridConfig() }

func (c *Client) UpdateHybridConfig(patch search.HybridConfigPatch) (search.HybridConfig, error) {
	return c.search.UpdateHybridConfig(patch)
}

func (c *Client) FindPaths(ctx context.Context, from, to string, opts *paths.Options) (*paths.Result, error) {
	return c.paths.FindPaths(ctx, from, to, opts)
}

func (c *Client) NodeAnalytics(ctx context.Context, entity string, opts *analytics.Options) (*types.NodeAnalytics, error) {
	return c.analytics.NodeAnalytics(ctx, entity, opts)
}

// Storage exposes the underlying provider for ingestion layers.
func (c *Client) Storage() storage.StorageProvider { return c.store }

// Decay exposes the shared decay model.
func (c *Client) Decay() *decay.Model { return c.decay }

// Close shuts down the backends the client owns.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.vector != nil {
		if err := c.vector.Close(); err != nil {
			firstErr = err
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.store.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
