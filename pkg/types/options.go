package types

// SearchOptions constrains a search request across all strategies.
type SearchOptions struct {
	// EntityTypes restricts results to the listed entity types. Empty
	// means no restriction.
	EntityTypes []string `json:"entityTypes,omitempty"`
	// Offset and Limit paginate the ranked result list.
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	// MinSimilarity discards vector hits below this cosine similarity.
	MinSimilarity float64 `json:"minSimilarity,omitempty"`
}

// DefaultSearchLimit applies when a request leaves Limit unset.
const DefaultSearchLimit = 10

// WithDefaults returns a copy with zero values replaced by defaults.
// A nil receiver yields a fully defaulted options value.
func (o *SearchOptions) WithDefaults() *SearchOptions {
	if o == nil {
		return &SearchOptions{Limit: DefaultSearchLimit}
	}
	out := *o
	if out.Limit <= 0 {
		out.Limit = DefaultSearchLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return &out
}
