package paths

import (
	"context"
	"sort"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// dfsPaths exhaustively enumerates simple paths up to MaxDepth, then
// orders them by increasing length with discovery order breaking ties.
// Without FindAllPaths only the best path is returned.
func (f *Finder) dfsPaths(ctx context.Context, from, to string, opts *Options) ([]*types.PathResult, error) {
	var found []*types.PathResult
	names := []string{from}
	inPath := map[string]bool{from: true}

	var walk func(curr string, rels []*types.Relation) error
	walk = func(curr string, rels []*types.Relation) error {
		if curr == to {
			path := buildPath(
				append([]string(nil), names...),
				append([]*types.Relation(nil), rels...),
				float64(len(rels)), opts.Algorithm)
			found = append(found, path)
			return nil
		}
		if len(rels) >= opts.MaxDepth {
			return nil
		}
		next, err := f.successors(ctx, curr, opts)
		if err != nil {
			return err
		}
		for _, rel := range next {
			if inPath[rel.To] {
				continue
			}
			names = append(names, rel.To)
			inPath[rel.To] = true
			if err := walk(rel.To, append(rels, rel)); err != nil {
				return err
			}
			names = names[:len(names)-1]
			delete(inPath, rel.To)
		}
		return nil
	}
	if err := walk(from, nil); err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Len() < found[j].Len()
	})

	limit := opts.MaxPaths
	if !opts.FindAllPaths {
		limit = 1
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}
