// Package paths discovers paths between two entities in the knowledge
// graph.
//
// Four algorithms are supported: bfs (unweighted shortest path by hop
// count), dfs (exhaustive simple-path enumeration), dijkstra (weighted
// shortest path with edge costs derived from decayed relation
// confidence), and astar (dijkstra with an admissible heuristic, always
// returning the same optimal cost). Traversal follows relation direction
// and pulls neighbors from storage on demand; depth, path-count, and
// filter bounds keep every search finite.
package paths
