package storage

import (
	"context"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// Capabilities is the set of optional operations a provider supports,
// fixed at construction. Callers consult it instead of probing methods.
type Capabilities uint32

const (
	// CapTemporal enables entity/relation history and graph-at-time queries.
	CapTemporal Capabilities = 1 << iota
	// CapDecayedView enables reading the graph with decayed confidence
	// precomputed by the store itself.
	CapDecayedView
	// CapSemanticSearch enables provider-native similarity search.
	CapSemanticSearch
)

// Has reports whether every capability in c is present.
func (s Capabilities) Has(c Capabilities) bool { return s&c == c }

// SearchOptions constrains provider-side candidate search.
type SearchOptions struct {
	EntityTypes []string
	Limit       int
	Offset      int
}

// EntityStore provides entity CRUD.
type EntityStore interface {
	// GetEntity returns the entity or a *types.NotFoundError.
	GetEntity(ctx context.Context, name string) (*types.Entity, error)

	// OpenEntities returns the named entities in request order, skipping
	// names that do not exist.
	OpenEntities(ctx context.Context, names []string) ([]*types.Entity, error)

	CreateEntities(ctx context.Context, entities []*types.Entity) error
	DeleteEntities(ctx context.Context, names []string) error
	DeleteObservations(ctx context.Context, name string, observations []string) error
}

// RelationStore provides relation CRUD keyed by the (from, to, type) triple.
type RelationStore interface {
	GetRelation(ctx context.Context, from, to, relationType string) (*types.Relation, error)
	CreateRelations(ctx context.Context, relations []*types.Relation) error
	UpdateRelation(ctx context.Context, relation *types.Relation) error
	DeleteRelations(ctx context.Context, relations []*types.Relation) error
}

// GraphTraversal exposes per-node adjacency, pulled on demand by the path
// finder and analytics engine. Relations are returned in creation order so
// traversal is deterministic.
type GraphTraversal interface {
	GetOutgoingRelations(ctx context.Context, name string) ([]*types.Relation, error)
	GetIncomingRelations(ctx context.Context, name string) ([]*types.Relation, error)
}

// GraphSearcher provides lexical candidate search for the graph strategy.
type GraphSearcher interface {
	// SearchEntities returns candidate entities matching the free-text
	// query against name, type, and observations. Scoring and final
	// ranking happen in the search strategy, not here.
	SearchEntities(ctx context.Context, query string, opts *SearchOptions) ([]*types.Entity, error)
}

// GraphLoader provides whole-graph snapshots.
type GraphLoader interface {
	LoadGraph(ctx context.Context) (*types.Graph, error)
	SaveGraph(ctx context.Context, graph *types.Graph) error
}

// TemporalStore provides history and point-in-time views. Providers
// without CapTemporal return types.ErrUnsupportedByStore from every method.
type TemporalStore interface {
	GetEntityHistory(ctx context.Context, name string) ([]*types.Entity, error)
	GetRelationHistory(ctx context.Context, from, to, relationType string) ([]*types.Relation, error)
	GetGraphAtTime(ctx context.Context, at time.Time) (*types.Graph, error)
}

// StorageProvider is the full contract consumed by the engine.
type StorageProvider interface {
	EntityStore
	RelationStore
	GraphTraversal
	GraphSearcher
	GraphLoader
	TemporalStore

	Capabilities() Capabilities
	Close(ctx context.Context) error
}
