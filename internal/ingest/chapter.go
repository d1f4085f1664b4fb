package ingest

import (
	"regexp"
	"strings"
)

// Chapter is one detected chapter heading and the line it starts on.
type Chapter struct {
	Title string
	Line  int
}

// HeadingPattern is one recognizer in the chapter-detection list. The set is
// data, not logic: callers can pass their own list to DetectChapters.
type HeadingPattern struct {
	Name string
	Re   *regexp.Regexp
}

// DefaultHeadingPatterns covers the heading shapes seen across the supported
// book corpus. Detection is best effort; missed chapters are acceptable.
var DefaultHeadingPatterns = []HeadingPattern{
	{Name: "english_chapter", Re: regexp.MustCompile(`(?i)^\s*chapter\s+(\d+|[ivxlcdm]+)\b`)},
	{Name: "western_chapter", Re: regexp.MustCompile(`(?i)^\s*(cap[íi]tulo|chapitre|kapitel|capitolo)\s+(\d+|[ivxlcdm]+)\b`)},
	{Name: "cjk_chapter", Re: regexp.MustCompile(`^\s*第[0-9０-９零一二三四五六七八九十百千]+[章回節节]`)},
	{Name: "roman_heading", Re: regexp.MustCompile(`^\s*[IVXLCDM]+\.\s+\S`)},
	{Name: "numbered_heading", Re: regexp.MustCompile(`^\s*\d{1,3}[.、]\s+\S`)},
}

// maxHeadingRunes keeps prose lines that merely start with a number from being
// mistaken for headings.
const maxHeadingRunes = 80

// DetectChapters scans line by line for chapter headings. Patterns are tried
// in order; the first match claims the line.
func DetectChapters(text string, patterns []HeadingPattern) []Chapter {
	if len(patterns) == 0 {
		patterns = DefaultHeadingPatterns
	}
	var chapters []Chapter
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len([]rune(trimmed)) > maxHeadingRunes {
			continue
		}
		for _, p := range patterns {
			if p.Re.MatchString(trimmed) {
				chapters = append(chapters, Chapter{Title: trimmed, Line: i})
				break
			}
		}
	}
	return chapters
}

// chapterFor returns the title of the chapter whose start line precedes the
// given line, or "" for content before the first detected heading.
func chapterFor(chapters []Chapter, line int) string {
	title := ""
	for _, ch := range chapters {
		if ch.Line > line {
			break
		}
		title = ch.Title
	}
	return title
}
