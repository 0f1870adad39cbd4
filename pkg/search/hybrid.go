package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// HybridConfig holds the fusion weights. Weights that do not sum to 1 are
// re-normalized at use; each must be non-negative and at least one must be
// positive.
type HybridConfig struct {
	GraphWeight  float64 `json:"graphWeight"`
	VectorWeight float64 `json:"vectorWeight"`
}

// DefaultHybridConfig favors vector similarity slightly over lexical match.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{GraphWeight: 0.4, VectorWeight: 0.6}
}

func (c HybridConfig) validate() error {
	if c.GraphWeight < 0 {
		return types.NewValidationError("graphWeight", c.GraphWeight, "must be non-negative")
	}
	if c.VectorWeight < 0 {
		return types.NewValidationError("vectorWeight", c.VectorWeight, "must be non-negative")
	}
	if c.GraphWeight+c.VectorWeight == 0 {
		return types.NewValidationError("graphWeight", c.GraphWeight, "at least one weight must be positive")
	}
	return nil
}

// normalized returns the weights scaled to sum to 1.
func (c HybridConfig) normalized() HybridConfig {
	sum := c.GraphWeight + c.VectorWeight
	return HybridConfig{GraphWeight: c.GraphWeight / sum, VectorWeight: c.VectorWeight / sum}
}

// HybridConfigPatch is a partial configuration update; nil fields keep
// their current value.
type HybridConfigPatch struct {
	GraphWeight  *float64 `json:"graphWeight,omitempty"`
	VectorWeight *float64 `json:"vectorWeight,omitempty"`
}

// HybridStrategy fans out to the graph and vector strategies concurrently
// and fuses their rankings with weighted min-max normalized scores.
//
// The configuration is swapped atomically: each Search call captures one
// snapshot up front, so an update is visible to a request either fully or
// not at all.
type HybridStrategy struct {
	graph  Strategy
	vector Strategy
	config atomic.Pointer[HybridConfig]
}

func NewHybridStrategy(graph, vector Strategy, cfg HybridConfig) (*HybridStrategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &HybridStrategy{graph: graph, vector: vector}
	s.config.Store(&cfg)
	return s, nil
}

func (s *HybridStrategy) Name() string { return StrategyHybrid }

// Config returns the current fusion configuration.
func (s *HybridStrategy) Config() HybridConfig { return *s.config.Load() }

// UpdateConfig applies a partial update and returns the resulting
// configuration. Invalid weights leave the configuration unchanged.
func (s *HybridStrategy) UpdateConfig(patch HybridConfigPatch) (HybridConfig, error) {
	for {
		current := s.config.Load()
		next := *current
		if patch.GraphWeight != nil {
			next.GraphWeight = *patch.GraphWeight
		}
		if patch.VectorWeight != nil {
			next.VectorWeight = *patch.VectorWeight
		}
		if err := next.validate(); err != nil {
			return *current, err
		}
		if s.config.CompareAndSwap(current, &next) {
			return next, nil
		}
	}
}

func (s *HybridStrategy) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	opts = opts.WithDefaults()
	cfg := s.Config().normalized()

	// Sub-strategies see the full pre-pagination window; the offset is
	// applied to the fused ranking, not to each source.
	sub := *opts
	sub.Offset = 0
	sub.Limit = opts.Offset + opts.Limit

	var (
		wg                       sync.WaitGroup
		graphResults, vecResults []types.ScoredEntity
		graphErr, vecErr         error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		graphResults, graphErr = s.graph.Search(ctx, query, &sub)
	}()
	go func() {
		defer wg.Done()
		vecResults, vecErr = s.vector.Search(ctx, query, &sub)
	}()
	wg.Wait()
	if graphErr != nil {
		return nil, graphErr
	}
	if vecErr != nil {
		return nil, vecErr
	}

	graphNorm := minMaxNormalize(graphResults)
	vecNorm := minMaxNormalize(vecResults)

	type fused struct {
		entity *types.Entity
		score  float64
	}
	byName := make(map[string]*fused, len(graphResults)+len(vecResults))
	for i, r := range graphResults {
		byName[r.Entity.Name] = &fused{entity: r.Entity, score: cfg.GraphWeight * graphNorm[i]}
	}
	for i, r := range vecResults {
		if f, ok := byName[r.Entity.Name]; ok {
			f.score += cfg.VectorWeight * vecNorm[i]
		} else {
			byName[r.Entity.Name] = &fused{entity: r.Entity, score: cfg.VectorWeight * vecNorm[i]}
		}
	}

	results := make([]types.ScoredEntity, 0, len(byName))
	for _, f := range byName {
		results = append(results, types.ScoredEntity{Entity: f.entity, Score: f.score})
	}
	sortScored(results)
	return paginate(results, opts.Offset, opts.Limit), nil
}

// minMaxNormalize maps scores to [0,1]. A list with a single score value
// (including a single result) normalizes to 1.0 everywhere.
func minMaxNormalize(results []types.ScoredEntity) []float64 {
	norm := make([]float64, len(results))
	if len(results) == 0 {
		return norm
	}
	lo, hi := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}
	for i, r := range results {
		if hi == lo {
			norm[i] = 1.0
		} else {
			norm[i] = (r.Score - lo) / (hi - lo)
		}
	}
	return norm
}
