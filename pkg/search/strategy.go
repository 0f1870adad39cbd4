package search

import (
	"context"
	"sort"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// Strategy names used in the Service registry.
const (
	StrategyGraph  = "graph"
	StrategyVector = "vector"
	StrategyHybrid = "hybrid"
)

// Strategy ranks entities against a free-text query.
type Strategy interface {
	Name() string

	// Search returns entities sorted descending by score, ties broken by
	// entity name ascending. Read-only: strategies never mutate the graph.
	Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error)
}

func sortScored(results []types.ScoredEntity) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entity.Name < results[j].Entity.Name
	})
}

func paginate(results []types.ScoredEntity, offset, limit int) []types.ScoredEntity {
	if offset >= len(results) {
		return nil
	}
	results = results[offset:]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
