package types

// ScoredEntity wraps an entity with a relevance score for one query.
// Transient, never persisted.
type ScoredEntity struct {
	Entity *Entity `json:"entity"`
	Score  float64 `json:"score"`
}

// PathResult is one discovered path between two entities: the ordered
// entity names, the relations connecting them, the total weight under the
// algorithm's cost model (hop count for unweighted algorithms), and the
// algorithm that found it.
type PathResult struct {
	Entities    []string    `json:"entities"`
	Relations   []*Relation `json:"relations"`
	TotalWeight float64     `json:"totalWeight"`
	Algorithm   string      `json:"algorithm"`
}

// Len returns the number of edges in the path.
func (p *PathResult) Len() int {
	return len(p.Relations)
}

// PathAnalysis holds derived statistics over a set of discovered paths.
type PathAnalysis struct {
	PathCount          int            `json:"pathCount"`
	MinLength          int            `json:"minLength"`
	MaxLength          int            `json:"maxLength"`
	AvgLength          float64        `json:"avgLength"`
	LengthDistribution map[int]int    `json:"lengthDistribution"`
	RelationTypeCounts map[string]int `json:"relationTypeCounts"`
	// BottleneckTypes lists relation types traversed by every returned
	// path; removing all relations of such a type disconnects every
	// discovered route.
	BottleneckTypes []string `json:"bottleneckTypes"`
}

// Neighbor describes one node reached during neighborhood expansion.
type Neighbor struct {
	Name         string  `json:"name"`
	RelationType string  `json:"relationType"`
	Direction    string  `json:"direction"` // "out" or "in" relative to the analyzed entity
	Depth        int     `json:"depth"`
	Confidence   float64 `json:"confidence"` // decayed, at read time
}

// Centrality holds structural-importance measures for one entity.
type Centrality struct {
	// Degree is the entity's degree divided by the number of sampled
	// neighborhood nodes.
	Degree float64 `json:"degree"`
	// Betweenness is approximate betweenness centrality computed over the
	// sampled neighborhood subgraph, normalized to [0,1].
	Betweenness float64 `json:"betweenness"`
}

// PathMetrics summarizes shortest-path structure from the analyzed entity
// to a bounded sample of other nodes.
type PathMetrics struct {
	AvgShortestPath float64 `json:"avgShortestPath"`
	Eccentricity    int     `json:"eccentricity"`
	SampleSize      int     `json:"sampleSize"`
}

// CommunityInfo summarizes label-propagation communities detected over
// the sampled neighborhood subgraph.
type CommunityInfo struct {
	// Count is the number of communities in the sample.
	Count int `json:"count"`
	// Members lists the community containing the analyzed entity, sorted.
	Members []string `json:"members"`
}

// NodeAnalytics is the on-demand analytics bundle for one entity. Optional
// sections are nil when not requested. Computed fresh on every call, never
// cached.
type NodeAnalytics struct {
	Entity                *Entity        `json:"entity"`
	Neighbors             []Neighbor     `json:"neighbors"`
	Centrality            *Centrality    `json:"centrality,omitempty"`
	PathMetrics           *PathMetrics   `json:"pathMetrics,omitempty"`
	ClusteringCoefficient *float64       `json:"clusteringCoefficient,omitempty"`
	Communities           *CommunityInfo `json:"communities,omitempty"`
}
