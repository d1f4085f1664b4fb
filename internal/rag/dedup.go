package rag

import (
	"sort"

	"github.com/verba-ai/verba/internal/model"
)

// MergeSources collapses attribution entries that share a logical source key,
// keeping the highest-scoring duplicate, then sorts the survivors by score
// descending and truncates to limit. A limit <= 0 keeps everything.
func MergeSources(limit int, lists ...[]model.Source) []model.Source {
	best := make(map[string]model.Source)
	var order []string
	for _, list := range lists {
		for _, src := range list {
			key := src.Key()
			existing, seen := best[key]
			if !seen {
				order = append(order, key)
				best[key] = src
				continue
			}
			if src.Score > existing.Score {
				best[key] = src
			}
		}
	}
	merged := make([]model.Source, 0, len(order))
	for _, key := range order {
		merged = append(merged, best[key])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
