package retrieval

import (
	"fmt"
	"strings"

	"github.com/mapgpt/mapgpt-go/internal/rank"
)

// Literal digests used when a retrieval succeeds with zero results.
// They are successful outcomes, so the completion always receives grounding text.
const (
	NoNewsSourceResults = "No recent news found on the Mapoly blog."
	NoRecentResults     = "No recent news found for this question."
	NoWebResults        = "No web results found for this question."
)

// FormatDigest renders ranked results as numbered markdown blocks separated by
// a blank line. It returns empty when there are no results.
//
//	1. **Title**
//	🗓 3 hours ago
//	Snippet
//	[Read more](https://...)
func FormatDigest(ranked []rank.Ranked, empty string) string {
	if len(ranked) == 0 {
		return empty
	}

	blocks := make([]string, len(ranked))
	for i, r := range ranked {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.Title)
		if r.Date != "" {
			fmt.Fprintf(&b, "🗓 %s\n", r.Date)
		}
		b.WriteString(r.Snippet)
		fmt.Fprintf(&b, "\n[Read more](%s)", r.Link)
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n\n")
}
