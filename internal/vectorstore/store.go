package vectorstore

import (
	"context"
	"math"

	"github.com/verba-ai/verba/internal/model"
)

// Index is one persistent nearest-neighbor index. Duplicate inserts are legal
// and create distinct entries; Query against an empty index returns an empty
// slice, never an error.
type Index interface {
	Insert(ctx context.Context, vector []float32, rec model.Record) error
	Query(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error)
	Count(ctx context.Context) (int64, error)
	Path() string
	Close() error
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
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
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
