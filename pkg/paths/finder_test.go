package paths

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/decay"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

func ptr(v float64) *float64 { return &v }

// diamondStore builds the fixture A->B (.9), B->C (.8), A->D (.5),
// D->C (.5), all KNOWS.
func diamondStore(t *testing.T) *storage.MemoryProvider {
	t.Helper()
	p := storage.NewMemoryProvider()
	ctx := context.Background()
	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{
		{Name: "A", EntityType: "node"},
		{Name: "B", EntityType: "node"},
		{Name: "C", EntityType: "node"},
		{Name: "D", EntityType: "node"},
	}))
	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "A", To: "B", RelationType: "KNOWS", Confidence: ptr(0.9)},
		{From: "B", To: "C", RelationType: "KNOWS", Confidence: ptr(0.8)},
		{From: "A", To: "D", RelationType: "KNOWS", Confidence: ptr(0.5)},
		{From: "D", To: "C", RelationType: "KNOWS", Confidence: ptr(0.5)},
	}))
	return p
}

func newFinder(t *testing.T) *Finder {
	t.Helper()
	return NewFinder(diamondStore(t), decay.Disabled(), nil)
}

func TestFindPathsValidation(t *testing.T) {
	f := newFinder(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		from, to string
		opts     *Options
	}{
		{"empty from", "", "C", nil},
		{"empty to", "A", "", nil},
		{"same endpoints", "A", "A", nil},
		{"depth too small", "A", "C", &Options{MaxDepth: -1}},
		{"depth too large", "A", "C", &Options{MaxDepth: 11}},
		{"max paths too large", "A", "C", &Options{MaxPaths: 101}},
		{"unknown algorithm", "A", "C", &Options{Algorithm: "bellman-ford"}},
		{"overlapping filters", "A", "C", &Options{
			RelationTypes:        []string{"KNOWS"},
			ExcludeRelationTypes: []string{"KNOWS"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.FindPaths(ctx, tc.from, tc.to, tc.opts)
			var verr *types.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestFindPathsMissingEndpoint(t *testing.T) {
	f := newFinder(t)

	_, err := f.FindPaths(context.Background(), "A", "nope", nil)
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Entity)
}

func TestBFSShortestPath(t *testing.T) {
	f := newFinder(t)

	result, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmBFS, MaxDepth: 3})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	path := result.Paths[0]
	// A->B was created before A->D, so BFS discovers C through B first.
	assert.Equal(t, []string{"A", "B", "C"}, path.Entities)
	assert.Equal(t, 2.0, path.TotalWeight)
	assert.Equal(t, AlgorithmBFS, path.Algorithm)
	require.Len(t, path.Relations, 2)
	assert.Equal(t, "B", path.Relations[0].To)
}

func TestBFSNoPathIsEmptyNotError(t *testing.T) {
	f := newFinder(t)

	// The graph is directed; nothing leads back to A.
	result, err := f.FindPaths(context.Background(), "C", "A", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Paths)
}

func TestBFSAllPaths(t *testing.T) {
	f := newFinder(t)

	result, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmBFS, FindAllPaths: true})
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
	assert.Equal(t, []string{"A", "B", "C"}, result.Paths[0].Entities)
	assert.Equal(t, []string{"A", "D", "C"}, result.Paths[1].Entities)

	capped, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmBFS, FindAllPaths: true, MaxPaths: 1})
	require.NoError(t, err)
	assert.Len(t, capped.Paths, 1)
}

func TestDFSOrderedByLength(t *testing.T) {
	p := diamondStore(t)
	// Add a longer detour A->E->B so path lengths differ.
	ctx := context.Background()
	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{{Name: "E", EntityType: "node"}}))
	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "A", To: "E", RelationType: "KNOWS"},
		{From: "E", To: "B", RelationType: "KNOWS"},
	}))
	f := NewFinder(p, decay.Disabled(), nil)

	result, err := f.FindPaths(ctx, "A", "C",
		&Options{Algorithm: AlgorithmDFS, FindAllPaths: true})
	require.NoError(t, err)
	require.Len(t, result.Paths, 3)
	for i := 1; i < len(result.Paths); i++ {
		assert.GreaterOrEqual(t, result.Paths[i].Len(), result.Paths[i-1].Len())
	}
	assert.Equal(t, []string{"A", "E", "B", "C"}, result.Paths[2].Entities)
}

func TestDijkstraPinnedCostFunction(t *testing.T) {
	f := newFinder(t)

	result, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmDijkstra, IncludeWeights: true})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	path := result.Paths[0]
	// cost(A->B->C) = (1-.9+.01)+(1-.8+.01) = 0.32
	// cost(A->D->C) = (1-.5+.01)+(1-.5+.01) = 1.02
	assert.Equal(t, []string{"A", "B", "C"}, path.Entities)
	assert.InDelta(t, 0.32, path.TotalWeight, 1e-9)
}

func TestAStarMatchesDijkstra(t *testing.T) {
	f := newFinder(t)
	ctx := context.Background()

	dijkstra, err := f.FindPaths(ctx, "A", "C",
		&Options{Algorithm: AlgorithmDijkstra, IncludeWeights: true})
	require.NoError(t, err)
	astar, err := f.FindPaths(ctx, "A", "C",
		&Options{Algorithm: AlgorithmAStar, IncludeWeights: true})
	require.NoError(t, err)

	require.Len(t, astar.Paths, 1)
	assert.Equal(t, dijkstra.Paths[0].Entities, astar.Paths[0].Entities)
	assert.InDelta(t, dijkstra.Paths[0].TotalWeight, astar.Paths[0].TotalWeight, 1e-9)
}

func TestDijkstraUnweightedCountsHops(t *testing.T) {
	f := newFinder(t)

	result, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmDijkstra})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, 2.0, result.Paths[0].TotalWeight)
}

func TestBidirectionalSameLength(t *testing.T) {
	f := newFinder(t)
	ctx := context.Background()

	uni, err := f.FindPaths(ctx, "A", "C", &Options{Algorithm: AlgorithmBFS})
	require.NoError(t, err)
	bi, err := f.FindPaths(ctx, "A", "C",
		&Options{Algorithm: AlgorithmBFS, Bidirectional: true})
	require.NoError(t, err)

	require.Len(t, bi.Paths, 1)
	assert.Equal(t, uni.Paths[0].Len(), bi.Paths[0].Len())
	assert.Equal(t, "A", bi.Paths[0].Entities[0])
	assert.Equal(t, "C", bi.Paths[0].Entities[len(bi.Paths[0].Entities)-1])
}

func TestMaxDepthBoundsEveryPath(t *testing.T) {
	f := newFinder(t)
	ctx := context.Background()

	for depth := 1; depth <= MaxDepthLimit; depth++ {
		result, err := f.FindPaths(ctx, "A", "C", &Options{
			Algorithm:    AlgorithmDFS,
			FindAllPaths: true,
			MaxDepth:     depth,
		})
		require.NoError(t, err)
		for _, p := range result.Paths {
			assert.LessOrEqual(t, p.Len(), depth)
		}
	}

	// Depth 1 cannot reach C from A at all.
	result, err := f.FindPaths(ctx, "A", "C", &Options{MaxDepth: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Paths)
}

func TestRelationTypeFilters(t *testing.T) {
	p := diamondStore(t)
	ctx := context.Background()
	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "A", To: "C", RelationType: "DISLIKES"},
	}))
	f := NewFinder(p, decay.Disabled(), nil)

	direct, err := f.FindPaths(ctx, "A", "C",
		&Options{RelationTypes: []string{"DISLIKES"}})
	require.NoError(t, err)
	require.Len(t, direct.Paths, 1)
	assert.Equal(t, []string{"A", "C"}, direct.Paths[0].Entities)

	excluded, err := f.FindPaths(ctx, "A", "C",
		&Options{ExcludeRelationTypes: []string{"KNOWS", "DISLIKES"}})
	require.NoError(t, err)
	assert.Empty(t, excluded.Paths)
}

func TestIncludeAnalysis(t *testing.T) {
	f := newFinder(t)

	result, err := f.FindPaths(context.Background(), "A", "C", &Options{
		Algorithm:       AlgorithmBFS,
		FindAllPaths:    true,
		IncludeAnalysis: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 2, result.Analysis.PathCount)
	assert.Equal(t, 2, result.Analysis.MinLength)
	assert.Equal(t, 2, result.Analysis.MaxLength)
	assert.Equal(t, 2.0, result.Analysis.AvgLength)
	assert.Equal(t, map[int]int{2: 2}, result.Analysis.LengthDistribution)
	assert.Equal(t, 4, result.Analysis.RelationTypeCounts["KNOWS"])
	assert.Equal(t, []string{"KNOWS"}, result.Analysis.BottleneckTypes)
}

func TestDecayChangesDijkstraWeights(t *testing.T) {
	// With decay enabled and old relations, confidences halve and the
	// costs rise, but the relative ordering of the fixture is preserved.
	p := diamondStore(t)
	model := decay.New(decay.DefaultHalfLife, 0.01)
	f := NewFinder(p, model, nil)

	result, err := f.FindPaths(context.Background(), "A", "C",
		&Options{Algorithm: AlgorithmDijkstra, IncludeWeights: true})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, []string{"A", "B", "C"}, result.Paths[0].Entities)
	// Fresh relations have zero age, so the weight matches the undecayed cost.
	assert.InDelta(t, 0.32, result.Paths[0].TotalWeight, 1e-9)
}

// A cheap two-hop route that reaches an intermediate node at the hop
// budget must not hide a costlier direct edge that still leaves room for
// the rest of the path.
func TestWeightedDepthBoundKeepsFeasibleRoutes(t *testing.T) {
	p := storage.NewMemoryProvider()
	ctx := context.Background()
	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{
		{Name: "A", EntityType: "node"},
		{Name: "M", EntityType: "node"},
		{Name: "P", EntityType: "node"},
		{Name: "T", EntityType: "node"},
	}))
	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "A", To: "M", RelationType: "KNOWS", Confidence: ptr(0.1)},
		{From: "A", To: "P", RelationType: "KNOWS", Confidence: ptr(0.99)},
		{From: "P", To: "M", RelationType: "KNOWS", Confidence: ptr(0.99)},
		{From: "M", To: "T", RelationType: "KNOWS", Confidence: ptr(0.99)},
	}))
	f := NewFinder(p, decay.Disabled(), nil)

	// A->P->M is the cheapest way to M (0.04) but spends both hops;
	// A->M (0.91) leaves one hop for M->T.
	for _, algorithm := range []string{AlgorithmDijkstra, AlgorithmAStar} {
		result, err := f.FindPaths(ctx, "A", "T",
			&Options{Algorithm: algorithm, IncludeWeights: true, MaxDepth: 2})
		require.NoError(t, err, algorithm)
		require.Len(t, result.Paths, 1, algorithm)
		assert.Equal(t, []string{"A", "M", "T"}, result.Paths[0].Entities, algorithm)
		assert.InDelta(t, 0.93, result.Paths[0].TotalWeight, 1e-9, algorithm)
	}

	// With one more hop the cheap detour wins again.
	result, err := f.FindPaths(ctx, "A", "T",
		&Options{Algorithm: AlgorithmDijkstra, IncludeWeights: true, MaxDepth: 3})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, []string{"A", "P", "M", "T"}, result.Paths[0].Entities)
	assert.InDelta(t, 0.06, result.Paths[0].TotalWeight, 1e-9)
}
