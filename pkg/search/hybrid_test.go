package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// stubStrategy returns a fixed result list, ignoring the query.
type stubStrategy struct {
	name    string
	results []types.ScoredEntity
	err     error

	mu      sync.Mutex
	started chan struct{} // closed on first Search, when set
	release chan struct{} // Search blocks until closed, when set
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	s.mu.Lock()
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	release := s.release
	s.mu.Unlock()
	if release != nil {
		<-release
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]types.ScoredEntity, len(s.results))
	copy(out, s.results)
	return out, nil
}

func scored(pairs ...any) []types.ScoredEntity {
	var out []types.ScoredEntity
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, types.ScoredEntity{
			Entity: &types.Entity{Name: pairs[i].(string), EntityType: "t"},
			Score:  pairs[i+1].(float64),
		})
	}
	return out
}

func TestHybridFusionDedupAndOrder(t *testing.T) {
	graph := &stubStrategy{name: StrategyGraph, results: scored("a", 1.0, "b", 0.5, "c", 0.0)}
	vec := &stubStrategy{name: StrategyVector, results: scored("b", 0.9, "d", 0.3)}
	h, err := NewHybridStrategy(graph, vec, HybridConfig{GraphWeight: 0.5, VectorWeight: 0.5})
	require.NoError(t, err)

	results, err := h.Search(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byName := map[string]float64{}
	for _, r := range results {
		byName[r.Entity.Name] = r.Score
	}
	// Graph norms: a=1, b=0.5, c=0. Vector norms: b=1, d=0.
	assert.InDelta(t, 0.5, byName["a"], 1e-9)
	assert.InDelta(t, 0.75, byName["b"], 1e-9) // present in both, combined
	assert.InDelta(t, 0.0, byName["c"], 1e-9)
	assert.InDelta(t, 0.0, byName["d"], 1e-9)
	assert.Equal(t, "b", results[0].Entity.Name)
	assert.Equal(t, "a", results[1].Entity.Name)
	// Equal fused scores tie-break by name.
	assert.Equal(t, "c", results[2].Entity.Name)
	assert.Equal(t, "d", results[3].Entity.Name)
}

func TestHybridWeightRenormalization(t *testing.T) {
	graph := &stubStrategy{name: StrategyGraph, results: scored("a", 1.0, "b", 0.0)}
	vec := &stubStrategy{name: StrategyVector, results: scored("b", 1.0, "a", 0.0)}
	// 2:6 behaves exactly like 0.25:0.75.
	h, err := NewHybridStrategy(graph, vec, HybridConfig{GraphWeight: 2, VectorWeight: 6})
	require.NoError(t, err)

	results, err := h.Search(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Entity.Name)
	assert.InDelta(t, 0.75, results[0].Score, 1e-9)
	assert.InDelta(t, 0.25, results[1].Score, 1e-9)
}

func TestHybridSingleResultNormalizesToOne(t *testing.T) {
	graph := &stubStrategy{name: StrategyGraph, results: scored("a", 0.1)}
	vec := &stubStrategy{name: StrategyVector}
	h, err := NewHybridStrategy(graph, vec, DefaultHybridConfig())
	require.NoError(t, err)

	results, err := h.Search(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.4, results[0].Score, 1e-9)
}

func TestHybridMonotonicInVectorSimilarity(t *testing.T) {
	graph := &stubStrategy{name: StrategyGraph, results: scored("a", 0.8, "b", 0.4)}
	fusedScore := func(sim float64) float64 {
		vec := &stubStrategy{name: StrategyVector, results: scored("a", sim, "b", 0.2, "c", 0.0)}
		h, err := NewHybridStrategy(graph, vec, DefaultHybridConfig())
		require.NoError(t, err)
		results, err := h.Search(context.Background(), "q", nil)
		require.NoError(t, err)
		for _, r := range results {
			if r.Entity.Name == "a" {
				return r.Score
			}
		}
		t.Fatal("entity a missing from fused results")
		return 0
	}

	prev := fusedScore(0.3)
	for _, sim := range []float64{0.5, 0.7, 0.9, 1.0} {
		cur := fusedScore(sim)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestHybridPropagatesSubStrategyErrors(t *testing.T) {
	boom := &types.VectorStoreError{Op: "search", Err: assert.AnError}
	graph := &stubStrategy{name: StrategyGraph, results: scored("a", 1.0)}
	vec := &stubStrategy{name: StrategyVector, err: boom}
	h, err := NewHybridStrategy(graph, vec, DefaultHybridConfig())
	require.NoError(t, err)

	_, err = h.Search(context.Background(), "q", nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHybridConfigUpdateValidation(t *testing.T) {
	h, err := NewHybridStrategy(
		&stubStrategy{name: StrategyGraph},
		&stubStrategy{name: StrategyVector},
		DefaultHybridConfig(),
	)
	require.NoError(t, err)

	gw := 0.2
	cfg, err := h.UpdateConfig(HybridConfigPatch{GraphWeight: &gw})
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.GraphWeight)
	assert.Equal(t, 0.6, cfg.VectorWeight) // untouched by the patch

	bad := -1.0
	_, err = h.UpdateConfig(HybridConfigPatch{VectorWeight: &bad})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0.2, h.Config().GraphWeight) // unchanged after rejection

	zero := 0.0
	_, err = h.UpdateConfig(HybridConfigPatch{GraphWeight: &zero, VectorWeight: &zero})
	assert.Error(t, err)
}

func TestHybridConfigSnapshotIsolation(t *testing.T) {
	graph := &stubStrategy{
		name:    StrategyGraph,
		results: scored("a", 1.0, "b", 0.0),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	vec := &stubStrategy{name: StrategyVector, results: scored("b", 1.0, "a", 0.0)}
	h, err := NewHybridStrategy(graph, vec, HybridConfig{GraphWeight: 1, VectorWeight: 0})
	require.NoError(t, err)

	started := graph.started
	type outcome struct {
		results []types.ScoredEntity
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := h.Search(context.Background(), "q", nil)
		done <- outcome{r, err}
	}()

	// Flip the weights while the first search is blocked mid-flight.
	<-started
	gw, vw := 0.0, 1.0
	_, err = h.UpdateConfig(HybridConfigPatch{GraphWeight: &gw, VectorWeight: &vw})
	require.NoError(t, err)
	close(graph.release)

	out := <-done
	require.NoError(t, out.err)
	// The in-flight search still ranks by the snapshot it started with.
	assert.Equal(t, "a", out.results[0].Entity.Name)

	after, err := h.Search(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", after[0].Entity.Name)
}
