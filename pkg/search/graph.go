package search

import (
	"context"
	"strings"

	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// GraphStrategy matches entities lexically against name, type, and
// observations. The storage backend produces candidates; scoring and
// ordering happen here so every backend ranks identically.
type GraphStrategy struct {
	store storage.GraphSearcher
}

func NewGraphStrategy(store storage.GraphSearcher) *GraphStrategy {
	return &GraphStrategy{store: store}
}

func (s *GraphStrategy) Name() string { return StrategyGraph }

func (s *GraphStrategy) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	opts = opts.WithDefaults()

	// Rank the full candidate set, then paginate; limiting candidates
	// before ranking would make page boundaries score-dependent.
	candidates, err := s.store.SearchEntities(ctx, query, &storage.SearchOptions{
		EntityTypes: opts.EntityTypes,
	})
	if err != nil {
		return nil, err
	}

	results := make([]types.ScoredEntity, 0, len(candidates))
	for _, e := range candidates {
		if score := scoreEntity(query, e); score > 0 {
			results = append(results, types.ScoredEntity{Entity: e, Score: score})
		}
	}
	sortScored(results)
	return paginate(results, opts.Offset, opts.Limit), nil
}

// scoreEntity combines a name/type component with a term-overlap component
// over observations. Exact name match scores 1.0, name prefix 0.9, name
// substring 0.75, exact entity type 0.6; each query term found in the
// observations adds its share of 0.5. The sum is capped at 1.0.
func scoreEntity(query string, e *types.Entity) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	name := strings.ToLower(e.Name)

	var base float64
	switch {
	case name == q:
		base = 1.0
	case strings.HasPrefix(name, q):
		base = 0.9
	case strings.Contains(name, q):
		base = 0.75
	}
	if strings.ToLower(e.EntityType) == q && base < 0.6 {
		base = 0.6
	}

	terms := strings.Fields(q)
	matched := 0
	for _, term := range terms {
		for _, obs := range e.Observations {
			if strings.Contains(strings.ToLower(obs), term) {
				matched++
				break
			}
		}
	}
	score := base
	if len(terms) > 0 {
		score += 0.5 * float64(matched) / float64(len(terms))
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
