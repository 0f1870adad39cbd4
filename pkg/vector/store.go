package vector

import (
	"context"
	"math"
)

// Match is a single nearest-neighbor result.
type Match struct {
	Name       string
	Similarity float64
}

// Store persists entity embeddings and answers similarity queries.
type Store interface {
	// Upsert stores or replaces the embedding for an entity.
	Upsert(ctx context.Context, name string, embedding []float32) error

	// Delete removes the embedding for an entity. Deleting a missing
	// entity is not an error.
	Delete(ctx context.Context, name string) error

	// Search returns up to limit entities ordered by descending cosine
	// similarity to the query vector. Matches below minSimilarity are
	// dropped. Ties break by name ascending.
	Search(ctx context.Context, query []float32, limit int, minSimilarity float64) ([]Match, error)

	Close() error
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// and zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
