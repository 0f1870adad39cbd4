package paths

import (
	"sort"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// analyzePaths derives statistics over a set of discovered paths: length
// distribution, relation type usage, and which types every path depends
// on (bottlenecks).
func analyzePaths(paths []*types.PathResult) *types.PathAnalysis {
	analysis := &types.PathAnalysis{
		PathCount:          len(paths),
		LengthDistribution: map[int]int{},
		RelationTypeCounts: map[string]int{},
	}
	if len(paths) == 0 {
		return analysis
	}

	totalLength := 0
	analysis.MinLength = paths[0].Len()
	typePresence := map[string]int{} // paths containing the type at least once

	for _, p := range paths {
		length := p.Len()
		totalLength += length
		analysis.LengthDistribution[length]++
		if length < analysis.MinLength {
			analysis.MinLength = length
		}
		if length > analysis.MaxLength {
			analysis.MaxLength = length
		}

		seen := map[string]bool{}
		for _, rel := range p.Relations {
			analysis.RelationTypeCounts[rel.RelationType]++
			if !seen[rel.RelationType] {
				seen[rel.RelationType] = true
				typePresence[rel.RelationType]++
			}
		}
	}
	analysis.AvgLength = float64(totalLength) / float64(len(paths))

	for relType, count := range typePresence {
		if count == len(paths) {
			analysis.BottleneckTypes = append(analysis.BottleneckTypes, relType)
		}
	}
	sort.Strings(analysis.BottleneckTypes)
	return analysis
}
