package search

import (
	"context"

	"github.com/vargamick/poster-memento-sub005/pkg/embedder"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
	"github.com/vargamick/poster-memento-sub005/pkg/vector"
)

// VectorStrategy embeds the query and ranks entities by cosine similarity.
// Embedding and vector store failures propagate; fallback policy belongs
// to the caller.
type VectorStrategy struct {
	store    vector.Store
	embedder embedder.Client
	entities storage.EntityStore
}

func NewVectorStrategy(store vector.Store, embedClient embedder.Client, entities storage.EntityStore) *VectorStrategy {
	return &VectorStrategy{store: store, embedder: embedClient, entities: entities}
}

func (s *VectorStrategy) Name() string { return StrategyVector }

func (s *VectorStrategy) Search(ctx context.Context, query string, opts *types.SearchOptions) ([]types.ScoredEntity, error) {
	opts = opts.WithDefaults()

	queryVector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	// With a type filter the post-load filtering can discard hits, so ask
	// the store for the full match set; otherwise one page is enough.
	fetch := opts.Offset + opts.Limit
	if len(opts.EntityTypes) > 0 {
		fetch = 0
	}
	matches, err := s.store.Search(ctx, queryVector, fetch, opts.MinSimilarity)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(matches))
	similarity := make(map[string]float64, len(matches))
	for i, m := range matches {
		names[i] = m.Name
		similarity[m.Name] = m.Similarity
	}
	entities, err := s.entities.OpenEntities(ctx, names)
	if err != nil {
		return nil, err
	}

	typeFilter := make(map[string]bool, len(opts.EntityTypes))
	for _, t := range opts.EntityTypes {
		typeFilter[t] = true
	}

	results := make([]types.ScoredEntity, 0, len(entities))
	for _, e := range entities {
		if len(typeFilter) > 0 && !typeFilter[e.EntityType] {
			continue
		}
		results = append(results, types.ScoredEntity{Entity: e, Score: similarity[e.Name]})
	}
	sortScored(results)
	return paginate(results, opts.Offset, opts.Limit), nil
}
