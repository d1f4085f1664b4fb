package rag

import (
	"fmt"
	"strings"

	"github.com/verba-ai/verba/internal/model"
)

// contextHeader and contextFooter wrap the source blocks with the fixed
// grounding directive handed to the chat backend.
const (
	contextHeader = `The following book excerpts are relevant to the conversation. ` +
		`Ground your replies in them where they apply.`
	contextFooter = `When you use an excerpt, explicitly attribute the claim to its book ` +
		`by title and quote or cite the specific concept you are drawing on.`
	unknownChapter = "unknown chapter"
)

// Context is the formatter output: the prompt-ready context block and the
// attribution list. Sources always reflects the original retrieval results,
// before filtering, so a hit remains attributable even when its text was
// pruned from the block.
type Context struct {
	Text     string
	Sources  []model.Source
	Included int
}

type Formatter struct {
	rules []FilterRule
}

func NewFormatter(rules []FilterRule) *Formatter {
	if len(rules) == 0 {
		rules = DefaultFilterRules(DefaultMinChunkChars)
	}
	return &Formatter{rules: rules}
}

// BuildContext filters low-quality chunks and renders the survivors as
// numbered source blocks. When every candidate is filtered out, the context
// text is empty and augmentation degrades to the unmodified base prompt.
func (f *Formatter) BuildContext(results []model.BookResult) Context {
	out := Context{Sources: make([]model.Source, 0, len(results))}
	var blocks []string
	for _, res := range results {
		out.Sources = append(out.Sources, model.Source{
			BookTitle:    res.Chunk.BookTitle,
			ChapterTitle: res.Chunk.ChapterTitle,
			PageNumber:   res.Chunk.PageNumber,
			Score:        res.Score,
		})
		if excludedBy(f.rules, res.Chunk.Content) != "" {
			continue
		}
		out.Included++
		chapter := res.Chunk.ChapterTitle
		if chapter == "" {
			chapter = unknownChapter
		}
		blocks = append(blocks, fmt.Sprintf("Source %d: %q — %s (relevance %.1f%%)\n%s",
			out.Included,
			res.Chunk.BookTitle,
			chapter,
			res.Score*100,
			strings.TrimSpace(res.Chunk.Content),
		))
	}
	if len(blocks) == 0 {
		return out
	}
	out.Text = contextHeader + "\n\n" + strings.Join(blocks, "\n\n") + "\n\n" + contextFooter
	return out
}

// Augment merges the context block into the base system prompt. An empty
// context returns the base prompt untouched.
func Augment(basePrompt, contextText string) string {
	if contextText == "" {
		return basePrompt
	}
	return basePrompt + "\n\n" + contextText
}
