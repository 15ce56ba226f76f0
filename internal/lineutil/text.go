package lineutil

import (
	"regexp"
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
)

// PlainText flattens the markdown-like markup answers use into text LINE
// displays as-is: **bold** loses its markers and [text](url) becomes
// "text (url)". Numbered lists and bare URLs are already plain.
func PlainText(text string) string {
	text = linkPattern.ReplaceAllString(text, "$1 ($2)")
	return boldPattern.ReplaceAllString(text, "$1")
}
