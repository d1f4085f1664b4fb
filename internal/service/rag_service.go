package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/filestore"
	"github.com/verba-ai/verba/internal/ingest"
	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
	"github.com/verba-ai/verba/internal/vectorstore"
)

// RAGService is the boundary the rest of the application talks to: index
// lifecycle, raw embedding, cross-domain search, and book import.
type RAGService struct {
	manager       *vectorstore.Manager
	queryEmbedder ai.IEmbedder
	docEmbedder   ai.IEmbedder
	books         filestore.Store
	ingestOpts    ingest.Options
}

func NewRAGService(
	manager *vectorstore.Manager,
	queryEmbedder ai.IEmbedder,
	docEmbedder ai.IEmbedder,
	books filestore.Store,
	ingestOpts ingest.Options,
) *RAGService {
	return &RAGService{
		manager:       manager,
		queryEmbedder: queryEmbedder,
		docEmbedder:   docEmbedder,
		books:         books,
		ingestOpts:    ingestOpts,
	}
}

// InitializeIndexes opens (creating if needed) both domain indexes. Calling it
// again is a no-op that reports the same names.
func (s *RAGService) InitializeIndexes(ctx context.Context) ([]string, error) {
	return s.manager.InitializeAll(ctx)
}

type IndexStats struct {
	vectorstore.Stats
	EmbedModel string `json:"embed_model"`
}

func (s *RAGService) IndexStats(ctx context.Context) (*IndexStats, error) {
	stats, err := s.manager.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &IndexStats{Stats: *stats, EmbedModel: s.queryEmbedder.ModelName()}, nil
}

type EmbedResult struct {
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
	ModelName string    `json:"model_name"`
}

func (s *RAGService) EmbedText(ctx context.Context, text string) (*EmbedResult, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", errs.ErrInvalid)
	}
	emb, err := s.queryEmbedder.Embed(ctx, text, ingest.EmbedTaskQuery)
	if err != nil {
		return nil, err
	}
	return &EmbedResult{
		Embedding: emb,
		Dimension: len(emb),
		ModelName: s.queryEmbedder.ModelName(),
	}, nil
}

type SearchResponse struct {
	Query   string               `json:"query"`
	Domain  model.Domain         `json:"domain"`
	Results []model.SearchResult `json:"results"`
	Count   int                  `json:"count"`
}

// Search embeds the query and runs top-K retrieval against one domain index.
// For the conversation domain, results are narrowed to the requesting user's
// own records before the limit applies.
func (s *RAGService) Search(ctx context.Context, query string, domain model.Domain, limit int, userID string) (*SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", errs.ErrInvalid)
	}
	if !domain.Valid() {
		return nil, fmt.Errorf("%w: unknown domain %q", errs.ErrInvalid, domain)
	}
	if limit <= 0 {
		limit = 5
	}
	idx, err := s.manager.Open(domain)
	if err != nil {
		return nil, err
	}
	vector, err := s.queryEmbedder.Embed(ctx, query, ingest.EmbedTaskQuery)
	if err != nil {
		return nil, err
	}
	k := limit
	filterUser := domain == model.DomainConversations && userID != ""
	if filterUser {
		// The user filter runs after scoring, so pull the full candidate set
		// and trim afterwards.
		count, err := idx.Count(ctx)
		if err != nil {
			return nil, err
		}
		k = int(count)
	}
	results, err := idx.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	if filterUser {
		kept := results[:0]
		for _, res := range results {
			if res.Record.Conversation != nil && res.Record.Conversation.UserID == userID {
				kept = append(kept, res)
			}
		}
		results = kept
		if len(results) > limit {
			results = results[:limit]
		}
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	return &SearchResponse{
		Query:   query,
		Domain:  domain,
		Results: results,
		Count:   len(results),
	}, nil
}

// ImportBook resolves the source document through the book store and runs the
// full ingestion pipeline against the books index.
func (s *RAGService) ImportBook(ctx context.Context, key, title string, progress ingest.Progress) (*ingest.Report, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: book title is required", errs.ErrInvalid)
	}
	rc, err := s.books.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read book source %s: %w", key, err)
	}
	idx, err := s.manager.Open(model.DomainBooks)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("starting book import",
		zap.String("key", key),
		zap.String("title", title),
		zap.Int("bytes", len(data)),
	)
	importer := ingest.NewImporter(s.docEmbedder, idx, s.ingestOpts)
	return importer.ImportBook(ctx, key, title, data, progress)
}

// BookIndex exposes the books index for components that read it directly.
func (s *RAGService) BookIndex() (vectorstore.Index, error) {
	return s.manager.Open(model.DomainBooks)
}
