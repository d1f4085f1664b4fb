package rag

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verba-ai/verba/internal/model"
)

type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fixedEmbedder) ModelName() string { return "fixed-embed" }

// memIndex serves canned results sorted by score, emulating the real index
// contract without touching disk.
type memIndex struct {
	entries []model.SearchResult
}

func (m *memIndex) Insert(ctx context.Context, vector []float32, rec model.Record) error {
	m.entries = append(m.entries, model.SearchResult{Record: rec, Score: 0})
	return nil
}

func (m *memIndex) Query(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error) {
	out := make([]model.SearchResult, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *memIndex) Count(ctx context.Context) (int64, error) { return int64(len(m.entries)), nil }
func (m *memIndex) Path() string                             { return "mem" }
func (m *memIndex) Close() error                             { return nil }

func bookEntry(title string, score float32) model.SearchResult {
	return model.SearchResult{
		Record: model.NewBookRecord(model.BookChunk{
			BookTitle: title,
			Content:   fmt.Sprintf("%s content at %.2f", title, score),
		}),
		Score: score,
	}
}

func TestRetrieve_OrderedAndTyped(t *testing.T) {
	idx := &memIndex{entries: []model.SearchResult{
		bookEntry("B", 0.5),
		bookEntry("A", 0.9),
		bookEntry("C", 0.7),
	}}
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, idx, 2)

	results, err := r.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "A", results[0].Chunk.BookTitle)
	require.Equal(t, "C", results[1].Chunk.BookTitle)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, &memIndex{}, 2)
	results, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRetrieve_EmbedFailurePropagates(t *testing.T) {
	r := NewRetriever(&fixedEmbedder{err: fmt.Errorf("backend down")}, &memIndex{}, 2)
	_, err := r.Retrieve(context.Background(), "query", 5)
	require.Error(t, err)
}

func TestRetrieveDiverse_SpreadsAcrossBooks(t *testing.T) {
	// Book A dominates the raw ranking; diversity must still admit B and C.
	var entries []model.SearchResult
	for i := 0; i < 6; i++ {
		entries = append(entries, bookEntry("A", 0.99-float32(i)*0.001))
	}
	entries = append(entries,
		bookEntry("B", 0.80), bookEntry("B", 0.79),
		bookEntry("C", 0.78), bookEntry("C", 0.77),
	)
	idx := &memIndex{entries: entries}
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, idx, 2)

	results, err := r.RetrieveDiverse(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 5)

	perBook := map[string]int{}
	for _, res := range results {
		perBook[res.Chunk.BookTitle]++
	}
	require.Equal(t, 2, perBook["A"])
	require.Equal(t, 2, perBook["B"])
	require.Equal(t, 1, perBook["C"])

	// Round one takes the best chunk of each book in rank order.
	require.Equal(t, "A", results[0].Chunk.BookTitle)
	require.Equal(t, "B", results[1].Chunk.BookTitle)
	require.Equal(t, "C", results[2].Chunk.BookTitle)
}

func TestRetrieveDiverse_Deterministic(t *testing.T) {
	idx := &memIndex{entries: []model.SearchResult{
		bookEntry("A", 0.9), bookEntry("B", 0.8), bookEntry("A", 0.7), bookEntry("B", 0.6),
	}}
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, idx, 2)

	first, err := r.RetrieveDiverse(context.Background(), "query", 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.RetrieveDiverse(context.Background(), "query", 3)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestRetrieveDiverse_SingleResultShortCircuits(t *testing.T) {
	idx := &memIndex{entries: []model.SearchResult{bookEntry("A", 0.9)}}
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, idx, 2)
	results, err := r.RetrieveDiverse(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
