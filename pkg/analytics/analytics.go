// Package analytics computes on-demand, resource-bounded analytics for a
// single entity: neighborhood expansion, centrality measures, path
// metrics, and the local clustering coefficient.
//
// Every computation runs over a bounded sample of the graph (the capped
// neighborhood), never the whole graph, and nothing is cached.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/decay"
	"github.com/vargamick/poster-memento-sub005/pkg/metrics"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

const (
	DefaultNeighborDepth = 1
	MaxNeighborDepth     = 3
	DefaultMaxNeighbors  = 100
	MaxNeighborsLimit    = 1000
)

// Store is the storage surface analytics needs.
type Store interface {
	GetEntity(ctx context.Context, name string) (*types.Entity, error)
	GetOutgoingRelations(ctx context.Context, name string) ([]*types.Relation, error)
	GetIncomingRelations(ctx context.Context, name string) ([]*types.Relation, error)
}

// Options bounds an analytics request. Optional sections are opt-in so
// callers pay only for what they read.
type Options struct {
	NeighborDepth      int  `json:"neighborDepth,omitempty"` // [1,3], default 1
	MaxNeighbors       int  `json:"maxNeighbors,omitempty"`  // [1,1000], default 100
	IncludeCentrality  bool `json:"includeCentrality,omitempty"`
	IncludePathMetrics bool `json:"includePathMetrics,omitempty"`
	IncludeClustering  bool `json:"includeClustering,omitempty"`
	IncludeCommunities bool `json:"includeCommunities,omitempty"`
}

func (o *Options) withDefaults() *Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.NeighborDepth == 0 {
		out.NeighborDepth = DefaultNeighborDepth
	}
	if out.MaxNeighbors == 0 {
		out.MaxNeighbors = DefaultMaxNeighbors
	}
	return &out
}

func (o *Options) validate() error {
	if o.NeighborDepth < 1 || o.NeighborDepth > MaxNeighborDepth {
		return types.NewValidationError("neighborDepth", o.NeighborDepth, "must be between 1 and 3")
	}
	if o.MaxNeighbors < 1 || o.MaxNeighbors > MaxNeighborsLimit {
		return types.NewValidationError("maxNeighbors", o.MaxNeighbors, "must be between 1 and 1000")
	}
	return nil
}

// Engine computes node analytics. Stateless between calls.
type Engine struct {
	store  Store
	decay  *decay.Model
	logger *slog.Logger
}

func NewEngine(store Store, model *decay.Model, logger *slog.Logger) *Engine {
	if model == nil {
		model = decay.Disabled()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, decay: model, logger: logger}
}

// NodeAnalytics computes the requested analytics bundle for one entity.
// Raises NotFoundError when the entity does not exist.
func (e *Engine) NodeAnalytics(ctx context.Context, name string, opts *Options) (*types.NodeAnalytics, error) {
	if name == "" {
		return nil, types.NewValidationError("entityName", name, "must not be empty")
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	done := metrics.TimeAnalytics()
	start := time.Now()
	result, err := e.compute(ctx, name, opts)
	done(err == nil)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("node analytics computed",
		"entity", name,
		"neighbors", len(result.Neighbors),
		"duration", time.Since(start))
	return result, nil
}

func (e *Engine) compute(ctx context.Context, name string, opts *Options) (*types.NodeAnalytics, error) {
	entity, err := e.store.GetEntity(ctx, name)
	if err != nil {
		return nil, err
	}

	neighbors, err := e.expandNeighborhood(ctx, name, opts)
	if err != nil {
		return nil, err
	}

	result := &types.NodeAnalytics{Entity: entity, Neighbors: neighbors}

	if opts.IncludeCentrality || opts.IncludePathMetrics || opts.IncludeCommunities {
		sub, err := e.buildSubgraph(ctx, name, neighbors)
		if err != nil {
			return nil, err
		}
		if opts.IncludeCentrality {
			result.Centrality = sub.centrality(name)
		}
		if opts.IncludePathMetrics {
			result.PathMetrics = sub.pathMetrics(name)
		}
		if opts.IncludeCommunities {
			result.Communities = sub.communities(name)
		}
	}
	if opts.IncludeClustering {
		coefficient, err := e.clusteringCoefficient(ctx, name)
		if err != nil {
			return nil, err
		}
		result.ClusteringCoefficient = &coefficient
	}
	return result, nil
}

// expandNeighborhood runs a BFS over both edge directions up to
// NeighborDepth, hard-capped at MaxNeighbors. Excess neighbors drop
// deterministically: per node, outgoing relations before incoming, each
// in creation order.
func (e *Engine) expandNeighborhood(ctx context.Context, root string, opts *Options) ([]types.Neighbor, error) {
	visited := map[string]bool{root: true}
	neighbors := make([]types.Neighbor, 0, opts.MaxNeighbors)
	frontier := []string{root}

	for depth := 1; depth <= opts.NeighborDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, curr := range frontier {
			if len(neighbors) >= opts.MaxNeighbors {
				return neighbors, nil
			}
			out, err := e.store.GetOutgoingRelations(ctx, curr)
			if err != nil {
				return nil, err
			}
			in, err := e.store.GetIncomingRelations(ctx, curr)
			if err != nil {
				return nil, err
			}
			for _, rel := range out {
				if len(neighbors) >= opts.MaxNeighbors {
					return neighbors, nil
				}
				if visited[rel.To] {
					continue
				}
				visited[rel.To] = true
				neighbors = append(neighbors, types.Neighbor{
					Name:         rel.To,
					RelationType: rel.RelationType,
					Direction:    "out",
					Depth:        depth,
					Confidence:   e.decay.RelationConfidence(rel),
				})
				next = append(next, rel.To)
			}
			for _, rel := range in {
				if len(neighbors) >= opts.MaxNeighbors {
					return neighbors, nil
				}
				if visited[rel.From] {
					continue
				}
				visited[rel.From] = true
				neighbors = append(neighbors, types.Neighbor{
					Name:         rel.From,
					RelationType: rel.RelationType,
					Direction:    "in",
					Depth:        depth,
					Confidence:   e.decay.RelationConfidence(rel),
				})
				next = append(next, rel.From)
			}
		}
		frontier = next
	}
	return neighbors, nil
}

// clusteringCoefficient is the fraction of connected pairs among the
// immediate (depth 1, both directions) neighborhood. Nodes with fewer
// than two neighbors have a coefficient of zero.
func (e *Engine) clusteringCoefficient(ctx context.Context, name string) (float64, error) {
	immediate, err := e.immediateNeighbors(ctx, name)
	if err != nil {
		return 0, err
	}
	k := len(immediate)
	if k < 2 {
		return 0, nil
	}

	closed := 0
	for i, a := range immediate {
		adjacent, err := e.immediateNeighborSet(ctx, a)
		if err != nil {
			return 0, err
		}
		for _, b := range immediate[i+1:] {
			if adjacent[b] {
				closed++
			}
		}
	}
	return float64(closed) / float64(k*(k-1)/2), nil
}

func (e *Engine) immediateNeighbors(ctx context.Context, name string) ([]string, error) {
	set, err := e.immediateNeighborSet(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out, nil
}

func (e *Engine) immediateNeighborSet(ctx context.Context, name string) (map[string]bool, error) {
	out, err := e.store.GetOutgoingRelations(ctx, name)
	if err != nil {
		return nil, err
	}
	in, err := e.store.GetIncomingRelations(ctx, name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(out)+len(in))
	for _, rel := range out {
		if rel.To != name {
			set[rel.To] = true
		}
	}
	for _, rel := range in {
		if rel.From != name {
			set[rel.From] = true
		}
	}
	return set, nil
}
