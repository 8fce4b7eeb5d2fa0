// Package markdown reduces Markdown, as used in architecture model
// descriptions, to plain text.
package markdown

import (
	"regexp"
	"strings"
)

var (
	codeFence     = regexp.MustCompile("(?s)```[^\\n]*\\n?(.*?)```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*|~~)([^*_~\n]+)(\*\*|__|\*|~~)`)
	blockquote    = regexp.MustCompile(`(?m)^>\s?`)
	rule          = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// ToText strips Markdown syntax and keeps the words. Link and image targets
// are dropped in favour of their text; code keeps its content.
func ToText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = codeFence.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = images.ReplaceAllString(s, "$1")
	s = links.ReplaceAllString(s, "$1")
	s = headings.ReplaceAllString(s, "")
	s = rule.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "$2")
	s = blockquote.ReplaceAllString(s, "")
	s = listMarkers.ReplaceAllString(s, "")
	s = numberedList.ReplaceAllString(s, "")
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
