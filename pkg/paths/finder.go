package paths

import (
	"context"
	"log/slog"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/decay"
	"github.com/vargamick/poster-memento-sub005/pkg/metrics"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// minEdgeCost keeps every weighted edge strictly positive so Dijkstra
// terminates, and makes hop count the tie-breaker between fully trusted
// edges. It doubles as the A* heuristic: any remaining path costs at
// least one minimum-cost edge.
const minEdgeCost = 0.01

// Store is the storage surface path finding needs.
type Store interface {
	GetEntity(ctx context.Context, name string) (*types.Entity, error)
	GetOutgoingRelations(ctx context.Context, name string) ([]*types.Relation, error)
	GetIncomingRelations(ctx context.Context, name string) ([]*types.Relation, error)
}

// Result bundles discovered paths with optional derived statistics.
type Result struct {
	Paths    []*types.PathResult `json:"paths"`
	Analysis *types.PathAnalysis `json:"analysis,omitempty"`
}

// Finder discovers paths between two entities. It pulls neighbors from
// storage on demand and holds no state between calls, so concurrent use
// is safe and a changing graph is tolerated.
type Finder struct {
	store  Store
	decay  *decay.Model
	logger *slog.Logger
}

func NewFinder(store Store, model *decay.Model, logger *slog.Logger) *Finder {
	if model == nil {
		model = decay.Disabled()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{store: store, decay: model, logger: logger}
}

// FindPaths returns paths from one entity to another under the given
// options. An empty result is valid and distinct from a missing endpoint,
// which raises NotFoundError.
func (f *Finder) FindPaths(ctx context.Context, from, to string, opts *Options) (*Result, error) {
	if from == "" {
		return nil, types.NewValidationError("fromEntity", from, "must not be empty")
	}
	if to == "" {
		return nil, types.NewValidationError("toEntity", to, "must not be empty")
	}
	if from == to {
		return nil, types.NewValidationError("toEntity", to, "must differ from fromEntity")
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if _, err := f.store.GetEntity(ctx, from); err != nil {
		return nil, err
	}
	if _, err := f.store.GetEntity(ctx, to); err != nil {
		return nil, err
	}

	done := metrics.TimePath(opts.Algorithm)
	start := time.Now()
	paths, err := f.dispatch(ctx, from, to, opts)
	done(err == nil)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("path search completed",
		"algorithm", opts.Algorithm,
		"from", from, "to", to,
		"paths", len(paths),
		"duration", time.Since(start))

	result := &Result{Paths: paths}
	if opts.IncludeAnalysis {
		result.Analysis = analyzePaths(paths)
	}
	return result, nil
}

func (f *Finder) dispatch(ctx context.Context, from, to string, opts *Options) ([]*types.PathResult, error) {
	switch opts.Algorithm {
	case AlgorithmBFS:
		if opts.FindAllPaths {
			return f.bfsAllPaths(ctx, from, to, opts)
		}
		var (
			path *types.PathResult
			err  error
		)
		if opts.Bidirectional {
			path, err = f.bidirectionalBFS(ctx, from, to, opts)
		} else {
			path, err = f.bfsShortest(ctx, from, to, opts)
		}
		if err != nil || path == nil {
			return nil, err
		}
		return []*types.PathResult{path}, nil
	case AlgorithmDFS:
		return f.dfsPaths(ctx, from, to, opts)
	case AlgorithmDijkstra, AlgorithmAStar:
		path, err := f.weightedShortest(ctx, from, to, opts)
		if err != nil || path == nil {
			return nil, err
		}
		return []*types.PathResult{path}, nil
	}
	// Unreachable after validation.
	return nil, types.NewValidationError("algorithm", opts.Algorithm, "unknown algorithm")
}

// successors returns the outgoing relations of name passing the type
// filters, in relation creation order. Traversal follows edge direction.
func (f *Finder) successors(ctx context.Context, name string, opts *Options) ([]*types.Relation, error) {
	rels, err := f.store.GetOutgoingRelations(ctx, name)
	if err != nil {
		return nil, err
	}
	return filterRelations(rels, opts), nil
}

// predecessors mirrors successors for the backward frontier.
func (f *Finder) predecessors(ctx context.Context, name string, opts *Options) ([]*types.Relation, error) {
	rels, err := f.store.GetIncomingRelations(ctx, name)
	if err != nil {
		return nil, err
	}
	return filterRelations(rels, opts), nil
}

func filterRelations(rels []*types.Relation, opts *Options) []*types.Relation {
	kept := rels[:0:0]
	for _, r := range rels {
		if opts.allows(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// edgeCost maps a relation to a traversal cost. Weighted mode derives the
// cost from the decayed confidence, so stale or doubtful relations cost
// more; a relation without confidence counts as fully trusted.
func (f *Finder) edgeCost(rel *types.Relation, weighted bool) float64 {
	if !weighted {
		return 1
	}
	return (1 - f.decay.RelationConfidence(rel)) + minEdgeCost
}

func buildPath(names []string, rels []*types.Relation, weight float64, algorithm string) *types.PathResult {
	return &types.PathResult{
		Entities:    names,
		Relations:   rels,
		TotalWeight: weight,
		Algorithm:   algorithm,
	}
}
