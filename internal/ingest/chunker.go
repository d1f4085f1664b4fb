package ingest

import "strings"

const (
	DefaultChunkWords   = 500
	DefaultOverlapWords = 50
)

// RawChunk is a chunk before embedding: its text and the source line its
// first own paragraph starts on.
type RawChunk struct {
	Content string
	Line    int
}

type paragraph struct {
	text string
	line int
}

// SplitChunks splits normalized text on blank-line boundaries and greedily
// accumulates paragraphs until the word target would be exceeded. A closed
// chunk seeds its successor with the tail of its last paragraph so context
// carries across the boundary. A single paragraph longer than the target is
// never split: it is carried whole and does not advance the running budget.
func SplitChunks(text string, chunkWords, overlapWords int) []RawChunk {
	if chunkWords <= 0 {
		chunkWords = DefaultChunkWords
	}
	if overlapWords < 0 {
		overlapWords = DefaultOverlapWords
	}
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []RawChunk
	var parts []string
	var lastPara string
	curWords := 0
	startLine := paragraphs[0].line
	hasBody := false

	closeChunk := func(nextLine int) {
		chunks = append(chunks, RawChunk{
			Content: strings.Join(parts, "\n\n"),
			Line:    startLine,
		})
		seed := tailWords(lastPara, overlapWords)
		parts = parts[:0]
		curWords = 0
		hasBody = false
		if seed != "" {
			parts = append(parts, seed)
			curWords = len(strings.Fields(seed))
		}
		startLine = nextLine
	}

	for _, p := range paragraphs {
		w := len(strings.Fields(p.text))
		if hasBody && curWords+w > chunkWords {
			closeChunk(p.line)
		}
		parts = append(parts, p.text)
		lastPara = p.text
		hasBody = true
		if w <= chunkWords {
			curWords += w
		}
	}
	if hasBody {
		chunks = append(chunks, RawChunk{
			Content: strings.Join(parts, "\n\n"),
			Line:    startLine,
		})
	}
	return chunks
}

func splitParagraphs(text string) []paragraph {
	var paragraphs []paragraph
	var lines []string
	start := -1
	flush := func() {
		if len(lines) == 0 {
			return
		}
		paragraphs = append(paragraphs, paragraph{
			text: strings.TrimSpace(strings.Join(lines, "\n")),
			line: start,
		})
		lines = lines[:0]
		start = -1
	}
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if start < 0 {
			start = i
		}
		lines = append(lines, line)
	}
	flush()
	return paragraphs
}

// tailWords returns the last n words of text, or the whole text when it has
// fewer than n words.
func tailWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
