package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verba-ai/verba/internal/vectorstore"
)

type stubEmbedder struct {
	calls    int
	failFrom int // fail on the Nth call (1-based), 0 means never
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.failFrom > 0 && s.calls >= s.failFrom {
		return nil, fmt.Errorf("embed backend down")
	}
	// Deterministic vector derived from the text length.
	return []float32{float32(len(text)), 1, 0}, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

func openTestIndex(t *testing.T) vectorstore.Index {
	t.Helper()
	idx, err := vectorstore.OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestImportBook_FullRun(t *testing.T) {
	text := strings.Join([]string{
		"Chapter 1: Openers",
		"",
		wordRun("a", 300),
		"",
		wordRun("b", 300),
		"",
		"Chapter 2: Follow-ups",
		"",
		wordRun("c", 300),
	}, "\n")

	idx := openTestIndex(t)
	importer := NewImporter(&stubEmbedder{}, idx, Options{ChunkWords: 300, OverlapWords: 20})

	var progressCalls int
	report, err := importer.ImportBook(context.Background(), "guide.txt", "The Guide", []byte(text), func(imported, total int) {
		progressCalls++
		require.Equal(t, progressCalls, imported)
	})
	require.NoError(t, err)
	require.Equal(t, "The Guide", report.BookTitle)
	require.Equal(t, 2, report.ChaptersFound)
	require.Equal(t, report.ChunksExtracted, report.ChunksImported)
	require.Greater(t, report.ChunksImported, 1)
	require.Equal(t, report.ChunksImported, progressCalls)

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(report.ChunksImported), count)
}

func TestImportBook_UnsupportedFormatIsFatal(t *testing.T) {
	idx := openTestIndex(t)
	importer := NewImporter(&stubEmbedder{}, idx, Options{})
	_, err := importer.ImportBook(context.Background(), "scan.pdf", "Scan", []byte("x"), nil)
	require.Error(t, err)
}

func TestImportBook_PartialFailureKeepsInsertedChunks(t *testing.T) {
	text := wordRun("a", 300) + "\n\n" + wordRun("b", 300) + "\n\n" + wordRun("c", 300)
	idx := openTestIndex(t)
	embedder := &stubEmbedder{failFrom: 2}
	importer := NewImporter(embedder, idx, Options{ChunkWords: 300, OverlapWords: 0})

	report, err := importer.ImportBook(context.Background(), "book.txt", "Partial", []byte(text), nil)
	require.Error(t, err)
	require.NotNil(t, report)
	require.Equal(t, 1, report.ChunksImported)

	count, countErr := idx.Count(context.Background())
	require.NoError(t, countErr)
	require.Equal(t, int64(1), count)
}
