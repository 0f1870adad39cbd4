package analytics

import (
	"context"
	"sort"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// subgraph is the sampled neighborhood treated as an undirected graph.
// Centrality and path metrics run over it instead of the full graph so
// their cost is bounded by MaxNeighbors, not graph size.
type subgraph struct {
	nodes []string
	adj   map[string][]string
}

// buildSubgraph collects the sampled nodes and the edges among them.
func (e *Engine) buildSubgraph(ctx context.Context, root string, neighbors []types.Neighbor) (*subgraph, error) {
	inSample := map[string]bool{root: true}
	nodes := []string{root}
	for _, n := range neighbors {
		if !inSample[n.Name] {
			inSample[n.Name] = true
			nodes = append(nodes, n.Name)
		}
	}

	sub := &subgraph{nodes: nodes, adj: make(map[string][]string, len(nodes))}
	seen := map[[2]string]bool{}
	addEdge := func(a, b string) {
		if a == b || !inSample[a] || !inSample[b] {
			return
		}
		key := [2]string{a, b}
		if a > b {
			key = [2]string{b, a}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		sub.adj[a] = append(sub.adj[a], b)
		sub.adj[b] = append(sub.adj[b], a)
	}

	for _, node := range nodes {
		out, err := e.store.GetOutgoingRelations(ctx, node)
		if err != nil {
			return nil, err
		}
		for _, rel := range out {
			addEdge(rel.From, rel.To)
		}
	}
	for _, node := range nodes {
		sort.Strings(sub.adj[node])
	}
	return sub, nil
}

// centrality computes degree centrality and approximate betweenness for
// root, both normalized against the sample.
func (s *subgraph) centrality(root string) *types.Centrality {
	n := len(s.nodes)
	c := &types.Centrality{}
	if n > 1 {
		c.Degree = float64(len(s.adj[root])) / float64(n-1)
		c.Betweenness = s.betweenness(root)
	}
	return c
}

// betweenness runs Brandes' accumulation over the sampled subgraph and
// returns root's normalized score. Approximate by construction: the
// sample stands in for the full graph.
func (s *subgraph) betweenness(root string) float64 {
	n := len(s.nodes)
	if n < 3 {
		return 0
	}
	score := 0.0
	for _, source := range s.nodes {
		// BFS from source recording predecessors and path counts.
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}
		preds := map[string][]string{}
		var order []string
		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, w := range s.adj[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}
		// Dependency accumulation in reverse BFS order.
		delta := map[string]float64{}
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w == root && w != source {
				score += delta[w]
			}
		}
	}
	// Undirected graph: each pair was counted twice. Normalize by the
	// number of node pairs excluding root.
	score /= 2
	maxPairs := float64((n - 1) * (n - 2) / 2)
	if maxPairs == 0 {
		return 0
	}
	normalized := score / maxPairs
	if normalized > 1 {
		normalized = 1
	}
	return normalized
}

// pathMetrics reports average shortest-path length and eccentricity from
// root to the reachable sampled nodes.
func (s *subgraph) pathMetrics(root string) *types.PathMetrics {
	dist := map[string]int{root: 0}
	queue := []string{root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range s.adj[v] {
			if _, seen := dist[w]; !seen {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
		}
	}

	metrics := &types.PathMetrics{SampleSize: len(dist) - 1}
	if metrics.SampleSize == 0 {
		return metrics
	}
	total := 0
	for node, d := range dist {
		if node == root {
			continue
		}
		total += d
		if d > metrics.Eccentricity {
			metrics.Eccentricity = d
		}
	}
	metrics.AvgShortestPath = float64(total) / float64(metrics.SampleSize)
	return metrics
}
