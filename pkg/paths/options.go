package paths

import (
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// Supported algorithm names.
const (
	AlgorithmBFS      = "bfs"
	AlgorithmDFS      = "dfs"
	AlgorithmDijkstra = "dijkstra"
	AlgorithmAStar    = "astar"
)

const (
	DefaultMaxDepth = 6
	MaxDepthLimit   = 10
	DefaultMaxPaths = 10
	MaxPathsLimit   = 100
)

// Options bounds and shapes a path search.
type Options struct {
	// Algorithm is one of bfs, dfs, dijkstra, astar. Defaults to bfs.
	Algorithm string `json:"algorithm,omitempty"`

	// MaxDepth caps path length in edges, in [1,10]. Defaults to 6.
	MaxDepth int `json:"maxDepth,omitempty"`

	// FindAllPaths enumerates multiple paths instead of the single best.
	FindAllPaths bool `json:"findAllPaths,omitempty"`

	// MaxPaths caps the enumeration, in [1,100]. Defaults to 10.
	// Only meaningful with FindAllPaths.
	MaxPaths int `json:"maxPaths,omitempty"`

	// RelationTypes restricts traversal to the listed types;
	// ExcludeRelationTypes forbids types. Both given must be disjoint.
	RelationTypes        []string `json:"relationTypes,omitempty"`
	ExcludeRelationTypes []string `json:"excludeRelationTypes,omitempty"`

	// IncludeWeights derives edge costs from decayed relation confidence
	// for dijkstra and astar; without it every edge costs 1.
	IncludeWeights bool `json:"includeWeights,omitempty"`

	// Bidirectional expands from both endpoints simultaneously. Honored
	// by bfs only; the weighted algorithms and dfs ignore it.
	Bidirectional bool `json:"bidirectional,omitempty"`

	// IncludeAnalysis appends derived statistics over the returned paths.
	IncludeAnalysis bool `json:"includeAnalysis,omitempty"`
}

// withDefaults returns a copy with zero values replaced. Nil-safe.
func (o *Options) withDefaults() *Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Algorithm == "" {
		out.Algorithm = AlgorithmBFS
	}
	if out.MaxDepth == 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	if out.MaxPaths == 0 {
		out.MaxPaths = DefaultMaxPaths
	}
	return &out
}

// validate fails fast before any traversal.
func (o *Options) validate() error {
	switch o.Algorithm {
	case AlgorithmBFS, AlgorithmDFS, AlgorithmDijkstra, AlgorithmAStar:
	default:
		return types.NewValidationError("algorithm", o.Algorithm, "must be one of bfs, dfs, dijkstra, astar")
	}
	if o.MaxDepth < 1 || o.MaxDepth > MaxDepthLimit {
		return types.NewValidationError("maxDepth", o.MaxDepth, "must be between 1 and 10")
	}
	if o.MaxPaths < 1 || o.MaxPaths > MaxPathsLimit {
		return types.NewValidationError("maxPaths", o.MaxPaths, "must be between 1 and 100")
	}
	if len(o.RelationTypes) > 0 && len(o.ExcludeRelationTypes) > 0 {
		excluded := make(map[string]bool, len(o.ExcludeRelationTypes))
		for _, t := range o.ExcludeRelationTypes {
			excluded[t] = true
		}
		for _, t := range o.RelationTypes {
			if excluded[t] {
				return types.NewValidationError("relationTypes", t, "appears in both relationTypes and excludeRelationTypes")
			}
		}
	}
	return nil
}

// allows reports whether the relation passes the type filters.
func (o *Options) allows(rel *types.Relation) bool {
	for _, t := range o.ExcludeRelationTypes {
		if rel.RelationType == t {
			return false
		}
	}
	if len(o.RelationTypes) == 0 {
		return true
	}
	for _, t := range o.RelationTypes {
		if rel.RelationType == t {
			return true
		}
	}
	return false
}
