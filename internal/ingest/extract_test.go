package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verba-ai/verba/internal/pkg/errs"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText_Plain(t *testing.T) {
	out, err := ExtractText("book.txt", []byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestExtractText_Markdown(t *testing.T) {
	src := "# Chapter 1\n\nFirst paragraph with *emphasis* kept as text.\n\nSecond paragraph.\n"
	out, err := ExtractText("book.md", []byte(src))
	require.NoError(t, err)
	require.Equal(t, "Chapter 1\n\nFirst paragraph with emphasis kept as text.\n\nSecond paragraph.", out)
}

func TestExtractText_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`
	out, err := ExtractText("book.docx", buildDocx(t, doc))
	require.NoError(t, err)
	require.Equal(t, "First paragraph.\n\nSecond paragraph.", out)
}

func TestExtractText_DocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())
	_, err := ExtractText("book.docx", buf.Bytes())
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	_, err := ExtractText("book.pdf", []byte("%PDF-1.4"))
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
	require.Contains(t, err.Error(), ".pdf")
}
