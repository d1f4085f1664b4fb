package ingest

import (
	"regexp"
	"strings"
)

var excessBlankLines = regexp.MustCompile(`\n{4,}`)

// Normalize unifies line endings, collapses runs of three or more blank lines
// into a single blank line, and trims the document edges.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
