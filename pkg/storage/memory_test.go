package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

func newTestProvider(t *testing.T) *MemoryProvider {
	t.Helper()
	p := NewMemoryProvider()
	err := p.CreateEntities(context.Background(), []*types.Entity{
		{Name: "alice", EntityType: "person", Observations: []string{"likes go", "works remote"}},
		{Name: "bob", EntityType: "person", Observations: []string{"likes rust"}},
		{Name: "acme", EntityType: "company"},
	})
	require.NoError(t, err)
	return p
}

func TestMemoryProviderGetEntity(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	e, err := p.GetEntity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "person", e.EntityType)
	assert.Equal(t, int64(1), e.Version)

	_, err = p.GetEntity(ctx, "nobody")
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nobody", nf.Entity)
}

func TestMemoryProviderOpenEntitiesSkipsMissing(t *testing.T) {
	p := newTestProvider(t)

	got, err := p.OpenEntities(context.Background(), []string{"alice", "ghost", "bob"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name)
	assert.Equal(t, "bob", got[1].Name)
}

func TestMemoryProviderUpsertBumpsVersion(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	err := p.CreateEntities(ctx, []*types.Entity{
		{Name: "alice", EntityType: "person", Observations: []string{"likes go", "mentors"}},
	})
	require.NoError(t, err)

	e, err := p.GetEntity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Version)
	assert.Contains(t, e.Observations, "mentors")

	history, err := p.GetEntityHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMemoryProviderRelations(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	conf := 0.8

	err := p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "bob", RelationType: "knows", Confidence: &conf},
		{From: "alice", To: "acme", RelationType: "works_at"},
	})
	require.NoError(t, err)

	// Duplicate triple is rejected.
	err = p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "bob", RelationType: "knows"},
	})
	assert.ErrorIs(t, err, types.ErrDuplicateRelation)

	// Missing endpoint is rejected.
	err = p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "ghost", RelationType: "knows"},
	})
	assert.ErrorIs(t, err, types.ErrMissingEndpoint)

	out, err := p.GetOutgoingRelations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Creation order preserved.
	assert.Equal(t, "knows", out[0].RelationType)
	assert.Equal(t, "works_at", out[1].RelationType)

	in, err := p.GetIncomingRelations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "alice", in[0].From)
}

func TestMemoryProviderUpdateRelation(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "bob", RelationType: "knows"},
	}))

	conf := 0.5
	err := p.UpdateRelation(ctx, &types.Relation{
		From: "alice", To: "bob", RelationType: "knows", Confidence: &conf,
	})
	require.NoError(t, err)

	r, err := p.GetRelation(ctx, "alice", "bob", "knows")
	require.NoError(t, err)
	require.NotNil(t, r.Confidence)
	assert.Equal(t, 0.5, *r.Confidence)
	assert.Equal(t, int64(2), r.Version)
}

func TestMemoryProviderDeleteEntityDetachesRelations(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "bob", RelationType: "knows"},
	}))
	require.NoError(t, p.DeleteEntities(ctx, []string{"bob"}))

	out, err := p.GetOutgoingRelations(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = p.GetEntity(ctx, "bob")
	var nf *types.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMemoryProviderSearchEntities(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	got, err := p.SearchEntities(ctx, "likes", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name)

	got, err = p.SearchEntities(ctx, "likes", &SearchOptions{EntityTypes: []string{"company"}})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = p.SearchEntities(ctx, "", &SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryProviderDeleteObservations(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.DeleteObservations(ctx, "alice", []string{"likes go"}))
	e, err := p.GetEntity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"works remote"}, e.Observations)
}

func TestMemoryProviderGraphAtTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := NewMemoryProvider().WithNow(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{
		{Name: "alice", EntityType: "person"},
	}))

	later := now.Add(24 * time.Hour)
	p.now = func() time.Time { return later }
	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{
		{Name: "bob", EntityType: "person"},
	}))

	g, err := p.GetGraphAtTime(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, g.Entities, 1)
	assert.Equal(t, "alice", g.Entities[0].Name)

	g, err = p.GetGraphAtTime(ctx, later.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, g.Entities, 2)
}

func TestMemoryProviderCapabilities(t *testing.T) {
	p := NewMemoryProvider()
	assert.True(t, p.Capabilities().Has(CapTemporal))
	assert.False(t, p.Capabilities().Has(CapSemanticSearch))
}

func TestMemoryProviderLoadSaveGraph(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, p.CreateRelations(ctx, []*types.Relation{
		{From: "alice", To: "acme", RelationType: "works_at"},
	}))

	g, err := p.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, g.Entities, 3)
	assert.Len(t, g.Relations, 1)

	q := NewMemoryProvider()
	require.NoError(t, q.SaveGraph(ctx, g))
	g2, err := q.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, g2.Entities, 3)
	assert.Len(t, g2.Relations, 1)
}

func TestMemoryProviderValidation(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	err := p.CreateEntities(ctx, []*types.Entity{{Name: ""}})
	assert.Error(t, err)

	require.NoError(t, p.CreateEntities(ctx, []*types.Entity{{Name: "a", EntityType: "t"}}))
	err = p.CreateRelations(ctx, []*types.Relation{{From: "a", To: "a", RelationType: "loop"}})
	assert.True(t, errors.Is(err, types.ErrSelfRelation))
}
