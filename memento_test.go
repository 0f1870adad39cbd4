package memento

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/paths"
	"github.com/vargamick/poster-memento-sub005/pkg/search"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := storage.NewMemoryProvider()
	ctx := context.Background()
	require.NoError(t, store.CreateEntities(ctx, []*types.Entity{
		{Name: "alpha", EntityType: "service", Observations: []string{"handles ingest"}},
		{Name: "beta", EntityType: "service", Observations: []string{"handles queries"}},
		{Name: "gamma", EntityType: "database"},
	}))
	require.NoError(t, store.CreateRelations(ctx, []*types.Relation{
		{From: "alpha", To: "beta", RelationType: "CALLS"},
		{From: "beta", To: "gamma", RelationType: "READS"},
	}))

	c, err := NewClient(store, nil)
	require.NoError(t, err)
	return c
}

func TestClientSearch(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	results, err := c.Search(ctx, "alpha", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "alpha", results[0].Entity.Name)

	// Unknown strategy name falls back to the default, not an error.
	same, err := c.SearchWithStrategy(ctx, "alpha", "nonexistent", nil)
	require.NoError(t, err)
	assert.Equal(t, results, same)
}

func TestClientGraphOnlyRegistry(t *testing.T) {
	c := newTestClient(t)

	assert.Equal(t, []string{search.StrategyGraph}, c.AvailableStrategies())
	assert.Equal(t, search.StrategyGraph, c.DefaultStrategy())
	assert.False(t, c.IsStrategyAvailable(search.StrategyHybrid))

	_, ok := c.HybridConfig()
	assert.False(t, ok)
	_, err := c.UpdateHybridConfig(search.HybridConfigPatch{})
	assert.Error(t, err)
}

func TestClientFindPaths(t *testing.T) {
	c := newTestClient(t)

	result, err := c.FindPaths(context.Background(), "alpha", "gamma", &paths.Options{MaxDepth: 3})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, result.Paths[0].Entities)
}

func TestClientNodeAnalytics(t *testing.T) {
	c := newTestClient(t)

	result, err := c.NodeAnalytics(context.Background(), "beta", nil)
	require.NoError(t, err)
	assert.Len(t, result.Neighbors, 2)

	_, err = c.NodeAnalytics(context.Background(), "missing", nil)
	var nf *types.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestClientClose(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Close(context.Background()))
}
