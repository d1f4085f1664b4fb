package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func wordRun(prefix string, n int) string {
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, fmt.Sprintf("%s%d", prefix, i))
	}
	return strings.Join(words, " ")
}

func TestSplitChunks_SmallTextSingleChunk(t *testing.T) {
	text := "first paragraph here.\n\nsecond paragraph here."
	chunks := SplitChunks(text, 500, 50)
	require.Len(t, chunks, 1)
	require.Equal(t, "first paragraph here.\n\nsecond paragraph here.", chunks[0].Content)
	require.Equal(t, 0, chunks[0].Line)
}

func TestSplitChunks_EmptyText(t *testing.T) {
	require.Nil(t, SplitChunks("", 500, 50))
	require.Nil(t, SplitChunks("\n\n\n", 500, 50))
}

func TestSplitChunks_OversizedParagraphsStayWhole(t *testing.T) {
	p1 := wordRun("a", 600)
	p2 := wordRun("b", 600)
	p3 := wordRun("c", 100)
	text := p1 + "\n\n" + p2 + "\n\n" + p3

	chunks := SplitChunks(text, 500, 50)
	require.Len(t, chunks, 2)

	// The first chunk is the first paragraph unsplit.
	require.Equal(t, p1, chunks[0].Content)

	// The second chunk opens with the 50-word tail of the previous paragraph
	// and carries both remaining paragraphs.
	seed := tailWords(p1, 50)
	require.Equal(t, 50, len(strings.Fields(seed)))
	require.True(t, strings.HasPrefix(chunks[1].Content, seed))
	require.Contains(t, chunks[1].Content, p2)
	require.True(t, strings.HasSuffix(chunks[1].Content, p3))
}

func TestSplitChunks_ShortParagraphJoinsOversizedPredecessor(t *testing.T) {
	// An oversized paragraph does not advance the word budget, so a short
	// follower shares its chunk. This is what keeps the 600/600/100 case above
	// at two chunks instead of three.
	p1 := wordRun("a", 600)
	p2 := wordRun("b", 100)
	chunks := SplitChunks(p1+"\n\n"+p2, 500, 50)
	require.Len(t, chunks, 1)
	require.Equal(t, p1+"\n\n"+p2, chunks[0].Content)
	require.Equal(t, 700, len(strings.Fields(chunks[0].Content)))
}

func TestSplitChunks_WordBudgetBound(t *testing.T) {
	// With no paragraph exceeding the target, no chunk's word count may exceed
	// the target plus the overlap by more than one paragraph's length.
	cases := []struct {
		name         string
		sizes        []int
		chunkWords   int
		overlapWords int
	}{
		{name: "uniform small", sizes: []int{120, 120, 120, 120, 120, 120, 120, 120}, chunkWords: 500, overlapWords: 50},
		{name: "mixed sizes", sizes: []int{10, 480, 30, 250, 250, 5, 400, 90, 310}, chunkWords: 500, overlapWords: 50},
		{name: "tight target", sizes: []int{250, 250, 250, 250, 250}, chunkWords: 300, overlapWords: 100},
		{name: "overlap larger than paragraphs", sizes: []int{40, 40, 40, 40, 40, 40}, chunkWords: 100, overlapWords: 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paras := make([]string, 0, len(tc.sizes))
			maxPara := 0
			for i, n := range tc.sizes {
				paras = append(paras, wordRun(fmt.Sprintf("p%dw", i), n))
				if n > maxPara {
					maxPara = n
				}
			}
			chunks := SplitChunks(strings.Join(paras, "\n\n"), tc.chunkWords, tc.overlapWords)
			require.NotEmpty(t, chunks)
			bound := tc.chunkWords + tc.overlapWords + maxPara
			for _, chunk := range chunks {
				require.LessOrEqual(t, len(strings.Fields(chunk.Content)), bound)
			}
		})
	}
}

func TestSplitChunks_GreedyAccumulation(t *testing.T) {
	// Four 200-word paragraphs against a 500-word target: the third paragraph
	// would push the first chunk past the target, so it opens the second.
	paras := []string{
		wordRun("a", 200),
		wordRun("b", 200),
		wordRun("c", 200),
		wordRun("d", 200),
	}
	chunks := SplitChunks(strings.Join(paras, "\n\n"), 500, 50)
	require.Len(t, chunks, 2)
	require.Equal(t, paras[0]+"\n\n"+paras[1], chunks[0].Content)
	require.True(t, strings.HasPrefix(chunks[1].Content, tailWords(paras[1], 50)))
	require.Contains(t, chunks[1].Content, paras[2])
	require.Contains(t, chunks[1].Content, paras[3])
}

func TestSplitChunks_ZeroOverlap(t *testing.T) {
	paras := []string{wordRun("a", 400), wordRun("b", 400)}
	chunks := SplitChunks(strings.Join(paras, "\n\n"), 500, 0)
	require.Len(t, chunks, 2)
	require.Equal(t, paras[0], chunks[0].Content)
	require.Equal(t, paras[1], chunks[1].Content)
}

func TestSplitChunks_LineTracking(t *testing.T) {
	text := "para one line.\n\npara two line."
	chunks := SplitChunks(text, 2, 0)
	require.Len(t, chunks, 2)
	require.Equal(t, 0, chunks[0].Line)
	require.Equal(t, 2, chunks[1].Line)
}

func TestTailWords(t *testing.T) {
	require.Equal(t, "", tailWords("one two three", 0))
	require.Equal(t, "three", tailWords("one two three", 1))
	require.Equal(t, "one two three", tailWords("one two three", 10))
}
