package paths

import (
	"context"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// step records how a node was discovered: the node it was reached from
// and the relation traversed. A nil rel marks a search root.
type step struct {
	prev string
	rel  *types.Relation
}

// bfsShortest returns the first shortest path by hop count, or nil when
// no path exists within MaxDepth. Expansion order is relation creation
// order, so the result is deterministic.
func (f *Finder) bfsShortest(ctx context.Context, from, to string, opts *Options) (*types.PathResult, error) {
	visited := map[string]step{from: {}}
	queue := []string{from}

	for depth := 0; depth < opts.MaxDepth && len(queue) > 0; depth++ {
		var next []string
		for _, curr := range queue {
			rels, err := f.successors(ctx, curr, opts)
			if err != nil {
				return nil, err
			}
			for _, rel := range rels {
				neighbor := rel.To
				if _, seen := visited[neighbor]; seen {
					continue
				}
				visited[neighbor] = step{prev: curr, rel: rel}
				if neighbor == to {
					return f.reconstructForward(visited, from, to, opts.Algorithm), nil
				}
				next = append(next, neighbor)
			}
		}
		queue = next
	}
	return nil, nil
}

func (f *Finder) reconstructForward(visited map[string]step, from, to, algorithm string) *types.PathResult {
	var names []string
	var rels []*types.Relation
	for curr := to; ; {
		names = append(names, curr)
		s := visited[curr]
		if s.rel == nil {
			break
		}
		rels = append(rels, s.rel)
		curr = s.prev
	}
	reverseStrings(names)
	reverseRelations(rels)
	return buildPath(names, rels, float64(len(rels)), algorithm)
}

// bfsAllPaths enumerates up to MaxPaths simple paths in non-decreasing
// hop-count order by breadth-first expansion over whole paths.
func (f *Finder) bfsAllPaths(ctx context.Context, from, to string, opts *Options) ([]*types.PathResult, error) {
	type partial struct {
		names []string
		rels  []*types.Relation
	}
	queue := []partial{{names: []string{from}}}
	var found []*types.PathResult

	for len(queue) > 0 && len(found) < opts.MaxPaths {
		curr := queue[0]
		queue = queue[1:]
		tail := curr.names[len(curr.names)-1]

		if tail == to {
			found = append(found, buildPath(curr.names, curr.rels, float64(len(curr.rels)), opts.Algorithm))
			continue
		}
		if len(curr.rels) >= opts.MaxDepth {
			continue
		}

		rels, err := f.successors(ctx, tail, opts)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			if containsName(curr.names, rel.To) {
				continue
			}
			names := append(append([]string(nil), curr.names...), rel.To)
			extended := append(append([]*types.Relation(nil), curr.rels...), rel)
			queue = append(queue, partial{names: names, rels: extended})
		}
	}
	return found, nil
}

// bidirectionalBFS expands frontiers from both endpoints and joins them
// at a meeting node. The returned path has the same length as the
// unidirectional result but may be a different member of the
// shortest-path equivalence class.
func (f *Finder) bidirectionalBFS(ctx context.Context, from, to string, opts *Options) (*types.PathResult, error) {
	fwd := map[string]step{from: {}}
	bwd := map[string]step{to: {}}
	fwdQueue, bwdQueue := []string{from}, []string{to}
	fwdDepth, bwdDepth := 0, 0

	for len(fwdQueue) > 0 && len(bwdQueue) > 0 && fwdDepth+bwdDepth < opts.MaxDepth {
		// Expand the smaller frontier first; it keeps the visited sets
		// balanced, which is the point of meeting in the middle.
		if len(fwdQueue) <= len(bwdQueue) {
			var next []string
			for _, curr := range fwdQueue {
				rels, err := f.successors(ctx, curr, opts)
				if err != nil {
					return nil, err
				}
				for _, rel := range rels {
					neighbor := rel.To
					if _, seen := fwd[neighbor]; seen {
						continue
					}
					fwd[neighbor] = step{prev: curr, rel: rel}
					if _, met := bwd[neighbor]; met {
						return f.joinAtMeeting(fwd, bwd, from, neighbor, opts.Algorithm), nil
					}
					next = append(next, neighbor)
				}
			}
			fwdQueue = next
			fwdDepth++
		} else {
			var next []string
			for _, curr := range bwdQueue {
				rels, err := f.predecessors(ctx, curr, opts)
				if err != nil {
					return nil, err
				}
				for _, rel := range rels {
					neighbor := rel.From
					if _, seen := bwd[neighbor]; seen {
						continue
					}
					bwd[neighbor] = step{prev: curr, rel: rel}
					if _, met := fwd[neighbor]; met {
						return f.joinAtMeeting(fwd, bwd, from, neighbor, opts.Algorithm), nil
					}
					next = append(next, neighbor)
				}
			}
			bwdQueue = next
			bwdDepth++
		}
	}
	return nil, nil
}

// joinAtMeeting splices the forward half (from..meeting) with the
// backward half (meeting..to).
func (f *Finder) joinAtMeeting(fwd, bwd map[string]step, from, meeting, algorithm string) *types.PathResult {
	half := f.reconstructForward(fwd, from, meeting, algorithm)
	names := half.Entities
	rels := half.Relations

	for curr := meeting; ; {
		s := bwd[curr]
		if s.rel == nil {
			break
		}
		rels = append(rels, s.rel)
		names = append(names, s.prev)
		curr = s.prev
	}
	return buildPath(names, rels, float64(len(rels)), algorithm)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseRelations(s []*types.Relation) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
