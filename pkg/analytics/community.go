package analytics

import (
	"sort"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// maxPropagationRounds bounds label propagation so a flip-flopping pair
// of nodes cannot loop forever.
const maxPropagationRounds = 100

// communities partitions the sampled subgraph with label propagation and
// reports the partition containing root.
func (s *subgraph) communities(root string) *types.CommunityInfo {
	labels := s.labelPropagation()

	byLabel := make(map[int][]string, len(labels))
	for node, label := range labels {
		byLabel[label] = append(byLabel[label], node)
	}

	info := &types.CommunityInfo{Count: len(byLabel)}
	info.Members = byLabel[labels[root]]
	sort.Strings(info.Members)
	return info
}

// labelPropagation assigns every sampled node a community label. Each
// node starts in its own community and repeatedly adopts the label most
// common among its neighbors until no label changes. Ties break toward
// the larger label so the outcome is deterministic.
func (s *subgraph) labelPropagation() map[string]int {
	ordered := append([]string{}, s.nodes...)
	sort.Strings(ordered)

	labels := make(map[string]int, len(ordered))
	for i, node := range ordered {
		labels[node] = i
	}

	for round := 0; round < maxPropagationRounds; round++ {
		changed := false
		next := make(map[string]int, len(labels))

		for _, node := range ordered {
			current := labels[node]

			counts := make(map[int]int)
			for _, neighbor := range s.adj[node] {
				counts[labels[neighbor]]++
			}

			best, bestCount := current, 0
			for label, count := range counts {
				if count > bestCount || (count == bestCount && label > best) {
					best, bestCount = label, count
				}
			}
			if bestCount == 0 {
				best = current
			}

			next[node] = best
			if best != current {
				changed = true
			}
		}

		labels = next
		if !changed {
			break
		}
	}
	return labels
}
