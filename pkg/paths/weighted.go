package paths

import (
	"container/heap"
	"context"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// searchState is a node reached at a specific hop count. The weighted
// search runs over states, not nodes: under a MaxDepth bound, the
// cheapest route to a node can exhaust the hop budget while a costlier
// route with fewer hops still leads to the target, so routes at
// different hop counts must compete independently.
type searchState struct {
	name string
	hops int
}

// weightedShortest runs Dijkstra, or A* when the algorithm says so. The
// A* heuristic is minEdgeCost for every node except the target, which is
// admissible, so both algorithms return the same optimal cost.
func (f *Finder) weightedShortest(ctx context.Context, from, to string, opts *Options) (*types.PathResult, error) {
	heuristic := func(string) float64 { return 0 }
	if opts.Algorithm == AlgorithmAStar {
		heuristic = func(name string) float64 {
			if name == to {
				return 0
			}
			return minEdgeCost
		}
	}

	start := searchState{name: from}
	dist := map[searchState]float64{start: 0}
	parent := map[searchState]step{}
	settled := map[searchState]bool{}

	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, &nodeItem{state: start, priority: heuristic(from)})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*nodeItem)
		if settled[item.state] {
			continue
		}
		settled[item.state] = true
		if item.state.name == to {
			return f.reconstructWeighted(parent, item.state, opts.Algorithm, dist[item.state]), nil
		}
		if item.state.hops >= opts.MaxDepth {
			continue
		}

		rels, err := f.successors(ctx, item.state.name, opts)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			next := searchState{name: rel.To, hops: item.state.hops + 1}
			if settled[next] {
				continue
			}
			alt := dist[item.state] + f.edgeCost(rel, opts.IncludeWeights)
			if prev, seen := dist[next]; !seen || alt < prev {
				dist[next] = alt
				parent[next] = step{prev: item.state.name, rel: rel}
				heap.Push(pq, &nodeItem{state: next, priority: alt + heuristic(rel.To)})
			}
		}
	}
	return nil, nil
}

// reconstructWeighted walks parents from the final state back to the
// start. Hop counts decrease by one per step, so the chain cannot loop.
func (f *Finder) reconstructWeighted(parent map[searchState]step, end searchState, algorithm string, total float64) *types.PathResult {
	names := []string{end.name}
	var rels []*types.Relation
	state := end
	for state.hops > 0 {
		st := parent[state]
		names = append(names, st.prev)
		rels = append(rels, st.rel)
		state = searchState{name: st.prev, hops: state.hops - 1}
	}
	reverseStrings(names)
	reverseRelations(rels)
	return &types.PathResult{
		Entities:    names,
		Relations:   rels,
		TotalWeight: total,
		Algorithm:   algorithm,
	}
}

// nodeItem is a priority-queue entry. Equal priorities order by name,
// then hop count, so the traversal is deterministic.
type nodeItem struct {
	state    searchState
	priority float64
}

type nodeQueue []*nodeItem

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	if q[i].state.name != q[j].state.name {
		return q[i].state.name < q[j].state.name
	}
	return q[i].state.hops < q[j].state.hops
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*nodeItem)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
