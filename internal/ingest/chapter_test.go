package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectChapters(t *testing.T) {
	text := strings.Join([]string{
		"Some front matter before any chapter.",
		"",
		"Chapter 1: Getting Started",
		"Body of the first chapter.",
		"",
		"CHAPTER II",
		"Body of the second chapter.",
		"",
		"第三章 高级话题",
		"正文内容。",
		"",
		"IV. Closing Thoughts",
		"Final body.",
	}, "\n")

	chapters := DetectChapters(text, nil)
	require.Len(t, chapters, 4)
	require.Equal(t, "Chapter 1: Getting Started", chapters[0].Title)
	require.Equal(t, 2, chapters[0].Line)
	require.Equal(t, "CHAPTER II", chapters[1].Title)
	require.Equal(t, "第三章 高级话题", chapters[2].Title)
	require.Equal(t, "IV. Closing Thoughts", chapters[3].Title)
}

func TestDetectChapters_LongLineIsNotAHeading(t *testing.T) {
	line := "Chapter 1 " + strings.Repeat("of a very long sentence that keeps going ", 4)
	require.Greater(t, len([]rune(line)), maxHeadingRunes)
	require.Empty(t, DetectChapters(line, nil))
}

func TestDetectChapters_NumberedHeading(t *testing.T) {
	chapters := DetectChapters("12. The Art of Listening\nbody", nil)
	require.Len(t, chapters, 1)
	require.Equal(t, "12. The Art of Listening", chapters[0].Title)
}

func TestChapterFor(t *testing.T) {
	chapters := []Chapter{
		{Title: "Chapter 1", Line: 2},
		{Title: "Chapter 2", Line: 10},
	}
	require.Equal(t, "", chapterFor(chapters, 0))
	require.Equal(t, "Chapter 1", chapterFor(chapters, 2))
	require.Equal(t, "Chapter 1", chapterFor(chapters, 9))
	require.Equal(t, "Chapter 2", chapterFor(chapters, 50))
	require.Equal(t, "", chapterFor(nil, 5))
}
