package rag

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/ingest"
	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/vectorstore"
)

// DefaultOverfetch is the multiplier applied to k when over-fetching raw
// results for diversity-aware retrieval.
const DefaultOverfetch = 2

// Retriever reads the book index. Both modes embed the query first; an
// embedding failure propagates unchanged, an empty index yields an empty
// result.
type Retriever struct {
	embedder  ai.IEmbedder
	index     vectorstore.Index
	overfetch int
}

func NewRetriever(embedder ai.IEmbedder, index vectorstore.Index, overfetch int) *Retriever {
	if overfetch <= 1 {
		overfetch = DefaultOverfetch
	}
	return &Retriever{embedder: embedder, index: index, overfetch: overfetch}
}

// Retrieve returns the k most similar book chunks, highest score first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]model.BookResult, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := r.embedder.Embed(ctx, query, ingest.EmbedTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	raw, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	results := make([]model.BookResult, 0, len(raw))
	for _, res := range raw {
		if res.Record.Kind != model.RecordKindBook || res.Record.Book == nil {
			continue
		}
		results = append(results, model.BookResult{Chunk: *res.Record.Book, Score: res.Score})
	}
	logutil.GetLogger(ctx).Debug("book retrieval",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// RetrieveDiverse spreads results across distinct books instead of letting
// the most topically dominant book fill the whole set. It over-fetches, groups
// by book title in first-encounter order, then round-robins across the groups
// until k chunks are collected or every group is drained.
func (r *Retriever) RetrieveDiverse(ctx context.Context, query string, k int) ([]model.BookResult, error) {
	if k <= 0 {
		return nil, nil
	}
	raw, err := r.Retrieve(ctx, query, r.overfetch*k)
	if err != nil {
		return nil, err
	}
	if len(raw) <= 1 {
		return raw, nil
	}

	groups := make(map[string][]model.BookResult)
	var rotation []string
	for _, res := range raw {
		title := res.Chunk.BookTitle
		if _, seen := groups[title]; !seen {
			rotation = append(rotation, title)
		}
		groups[title] = append(groups[title], res)
	}

	picked := make([]model.BookResult, 0, k)
	for len(picked) < k && len(rotation) > 0 {
		next := rotation[:0]
		for _, title := range rotation {
			if len(picked) >= k {
				next = append(next, title)
				continue
			}
			group := groups[title]
			picked = append(picked, group[0])
			if len(group) > 1 {
				groups[title] = group[1:]
				next = append(next, title)
			}
		}
		rotation = next
	}
	logutil.GetLogger(ctx).Debug("diverse retrieval",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("books", len(groups)),
		zap.Int("picked", len(picked)),
	)
	return picked, nil
}
