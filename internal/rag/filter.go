package rag

import (
	"regexp"
	"strings"
)

// DefaultMinChunkChars is the shortest chunk worth quoting in a prompt.
const DefaultMinChunkChars = 200

// FilterRule is one exclusion heuristic. Rules are applied independently;
// any single match disqualifies a chunk from the context block.
type FilterRule struct {
	Name     string
	Excluded func(content string) bool
}

var (
	// A line shaped like "Lastname, F. M." opening an academic citation.
	citationLineRe = regexp.MustCompile(`(?m)^[A-Z][A-Za-z'-]+,\s+[A-Z]\.(\s*[A-Z]\.)?`)
	// Any occurrence of the "Lastname, F." citation shape.
	citationAnyRe = regexp.MustCompile(`[A-Z][a-z]+,\s+[A-Z]\.`)
	digitRunRe    = regexp.MustCompile(`\d{3,}`)
)

// DefaultFilterRules is the stock exclusion list: reference sections,
// citation-dense passages, copyright boilerplate, number-dense index pages,
// and fragments too short to be meaningful excerpts.
func DefaultFilterRules(minChars int) []FilterRule {
	if minChars <= 0 {
		minChars = DefaultMinChunkChars
	}
	return []FilterRule{
		{
			Name: "reference_section",
			Excluded: func(content string) bool {
				lower := strings.ToLower(content)
				return strings.Contains(lower, "references") || strings.Contains(lower, "bibliography")
			},
		},
		{
			Name: "citation_line",
			Excluded: func(content string) bool {
				return citationLineRe.MatchString(content)
			},
		},
		{
			Name: "copyright_marker",
			Excluded: func(content string) bool {
				return strings.Contains(strings.ToLower(content), "copyright") || strings.Contains(content, "©")
			},
		},
		{
			Name: "digit_density",
			Excluded: func(content string) bool {
				return len(digitRunRe.FindAllString(content, 5)) > 3
			},
		},
		{
			Name: "too_short",
			Excluded: func(content string) bool {
				return len(content) < minChars
			},
		},
		{
			Name: "citation_density",
			Excluded: func(content string) bool {
				return len(citationAnyRe.FindAllString(content, 5)) > 3
			},
		},
	}
}

// excludedBy returns the name of the first rule that disqualifies the
// content, or "" when the content passes.
func excludedBy(rules []FilterRule, content string) string {
	for _, rule := range rules {
		if rule.Excluded(content) {
			return rule.Name
		}
	}
	return ""
}
