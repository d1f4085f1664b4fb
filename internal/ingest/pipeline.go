package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/vectorstore"
)

// EmbedTaskDocument is the embedding task type used for stored chunks;
// queries use EmbedTaskQuery.
const (
	EmbedTaskDocument = "RETRIEVAL_DOCUMENT"
	EmbedTaskQuery    = "RETRIEVAL_QUERY"
)

type Options struct {
	ChunkWords   int
	OverlapWords int
	Patterns     []HeadingPattern
}

// Progress reports per-chunk import progress to the invoking operator.
type Progress func(imported, total int)

type Report struct {
	BookTitle       string
	ChaptersFound   int
	ChunksExtracted int
	ChunksImported  int
}

// Importer runs the book ingestion pipeline: extract, normalize, detect
// chapters, chunk, embed, insert. Chunks are persisted independently; a
// failure aborts the rest of the run but keeps what was already inserted, so
// re-running after a partial failure is safe (duplicates are legal).
type Importer struct {
	embedder ai.IEmbedder
	index    vectorstore.Index
	opts     Options
}

func NewImporter(embedder ai.IEmbedder, index vectorstore.Index, opts Options) *Importer {
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = DefaultChunkWords
	}
	if opts.OverlapWords <= 0 {
		opts.OverlapWords = DefaultOverlapWords
	}
	return &Importer{embedder: embedder, index: index, opts: opts}
}

func (im *Importer) ImportBook(ctx context.Context, fileName, title string, data []byte, progress Progress) (*Report, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("book", title), zap.String("file", fileName))

	text, err := ExtractText(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", fileName, err)
	}
	text = Normalize(text)
	if text == "" {
		return nil, fmt.Errorf("extract %s: document has no text", fileName)
	}

	chapters := DetectChapters(text, im.opts.Patterns)
	chunks := SplitChunks(text, im.opts.ChunkWords, im.opts.OverlapWords)
	report := &Report{
		BookTitle:       title,
		ChaptersFound:   len(chapters),
		ChunksExtracted: len(chunks),
	}
	logger.Info("book extracted",
		zap.Int("chapters", len(chapters)),
		zap.Int("chunks", len(chunks)),
	)

	for i, chunk := range chunks {
		rec := model.NewBookRecord(model.BookChunk{
			BookTitle:    title,
			ChapterTitle: chapterFor(chapters, chunk.Line),
			Content:      chunk.Content,
			Timestamp:    time.Now(),
		})
		vector, err := im.embedder.Embed(ctx, chunk.Content, EmbedTaskDocument)
		if err != nil {
			logger.Error("embed chunk failed", zap.Int("chunk", i), zap.Error(err))
			return report, fmt.Errorf("embed chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if err := im.index.Insert(ctx, vector, rec); err != nil {
			logger.Error("insert chunk failed", zap.Int("chunk", i), zap.Error(err))
			return report, fmt.Errorf("insert chunk %d/%d: %w", i+1, len(chunks), err)
		}
		report.ChunksImported++
		if progress != nil {
			progress(report.ChunksImported, len(chunks))
		}
	}
	logger.Info("book imported", zap.Int("chunks", report.ChunksImported))
	return report, nil
}
