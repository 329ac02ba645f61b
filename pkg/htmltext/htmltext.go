// Package htmltext flattens Canvas rich-text (question bodies, essay
// answers) to plain text for terminal display and LLM prompts.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strip removes markup and collapses whitespace. Malformed HTML falls back
// to the raw input.
func Strip(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
