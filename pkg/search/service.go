package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/embedder"
	"github.com/vargamick/poster-memento-sub005/pkg/metrics"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
	"github.com/vargamick/poster-memento-sub005/pkg/vector"
)

// ServiceConfig wires a search Service. Storage is required. Vector and
// Embedder are optional as a pair; without both, only the graph strategy
// registers.
type ServiceConfig struct {
	Storage  storage.StorageProvider
	Vector   vector.Store
	Embedder embedder.Client

	// DefaultStrategy names the strategy used by Search. Falls back to
	// graph when unset or unavailable.
	DefaultStrategy string

	// Hybrid seeds the fusion weights. Zero value means defaults.
	Hybrid HybridConfig

	Logger *slog.Logger

	// Recorder receives search timing. Nil means the global recorder,
	// resolved per call.
	Recorder metrics.Recorder
}

// Service dispatches searches to named strategies.
type Service struct {
	strategies  map[string]Strategy
	defaultName string
	hybrid      *HybridStrategy
	logger      *slog.Logger
	recorder    metrics.Recorder
}

// NewService builds the strategy registry. The graph strategy is always
// present; vector and hybrid register only when both the vector store and
// the embedder are supplied, and their absence is logged, not fatal.
func NewService(cfg ServiceConfig) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		strategies: make(map[string]Strategy),
		logger:     logger,
		recorder:   cfg.Recorder,
	}

	graph := NewGraphStrategy(cfg.Storage)
	s.strategies[StrategyGraph] = graph

	if cfg.Vector != nil && cfg.Embedder != nil {
		vec := NewVectorStrategy(cfg.Vector, cfg.Embedder, cfg.Storage)
		s.strategies[StrategyVector] = vec

		hybridCfg := cfg.Hybrid
		if hybridCfg == (HybridConfig{}) {
			hybridCfg = DefaultHybridConfig()
		}
		hybrid, err := NewHybridStrategy(graph, vec, hybridCfg)
		if err != nil {
			return nil, err
		}
		s.strategies[StrategyHybrid] = hybrid
		s.hybrid = hybrid
	} else {
		logger.Info("vector store or embedder not configured, semantic search disabled")
	}

	s.defaultName = cfg.DefaultStrategy
	if _, ok := s.strategies[s.defaultName]; !ok {
		if s.defaultName != "" {
			logger.Warn("configured default strategy unavailable, using graph",
				"strategy", s.defaultName)
		}
		s.defaultName = StrategyGraph
	}
	return s, nil
}

// Search delegates to the default strategy.
func (s *Service) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	return s.SearchWithStrategy(ctx, query, s.defaultName, opts)
}

// timeRecorder resolves the injected recorder, falling back to the global
// one at call time so a recorder installed after construction is seen.
func (s *Service) timeRecorder() metrics.Recorder {
	if s.recorder != nil {
		return s.recorder
	}
	return metrics.Default()
}

// SearchWithStrategy delegates to the named strategy. An unknown or
// unavailable name downgrades to the default strategy with a warning; it
// never fails the request. Strategy execution errors propagate unchanged.
func (s *Service) SearchWithStrategy(ctx context.Context, query, name string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	strategy, ok := s.strategies[name]
	if !ok {
		s.logger.Warn("search strategy unavailable, falling back to default",
			"error", &types.StrategyUnavailableError{Name: name},
			"default", s.defaultName)
		strategy = s.strategies[s.defaultName]
	}

	opts = normalizeOptions(opts)

	done := metrics.TimeSearchWith(s.timeRecorder(), strategy.Name())
	start := time.Now()
	results, err := strategy.Search(ctx, query, opts)
	done(err == nil)
	if err != nil {
		s.logger.Error("search failed",
			"strategy", strategy.Name(), "query", query, "error", err)
		return nil, err
	}
	s.logger.Debug("search completed",
		"strategy", strategy.Name(),
		"query", query,
		"results", len(results),
		"duration", time.Since(start))
	return results, nil
}

// AvailableStrategies lists registered strategy names, sorted.
func (s *Service) AvailableStrategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) IsStrategyAvailable(name string) bool {
	_, ok := s.strategies[name]
	return ok
}

func (s *Service) DefaultStrategy() string { return s.defaultName }

// HybridConfig returns the current fusion weights. The second return is
// false when hybrid search is not registered.
func (s *Service) HybridConfig() (HybridConfig, bool) {
	if s.hybrid == nil {
		return HybridConfig{}, false
	}
	return s.hybrid.Config(), true
}

// UpdateHybridConfig applies a partial weight update.
func (s *Service) UpdateHybridConfig(patch HybridConfigPatch) (HybridConfig, error) {
	if s.hybrid == nil {
		return HybridConfig{}, &types.StrategyUnavailableError{Name: StrategyHybrid}
	}
	cfg, err := s.hybrid.UpdateConfig(patch)
	if err != nil {
		return cfg, err
	}
	s.logger.Info("hybrid search config updated",
		"graphWeight", cfg.GraphWeight, "vectorWeight", cfg.VectorWeight)
	return cfg, nil
}

// normalizeOptions is the metadata pre-pass applied before dispatch: it
// fills defaults, trims and deduplicates the entity type filter, and drops
// empty entries.
func normalizeOptions(opts *types.SearchOptions) *types.SearchOptions {
	out := opts.WithDefaults()
	if len(out.EntityTypes) == 0 {
		return out
	}
	seen := make(map[string]bool, len(out.EntityTypes))
	kept := out.EntityTypes[:0:0]
	for _, t := range out.EntityTypes {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		kept = append(kept, t)
	}
	out.EntityTypes = kept
	return out
}
