// Package render converts the markdown-like text produced by the pipeline into
// sanitized HTML for the chat UI.
package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	listItem = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	bold     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	link     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	image    = regexp.MustCompile(`(^|\s)(https?://\S+\.(?:png|jpe?g|gif|webp))(\s|$)`)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the sanitizer applied to rendered chat HTML.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("value").Matching(bluemonday.Integer).OnElements("li")
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireParseableURLs(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// ToHTML renders text as HTML. Supported markup: numbered list lines,
// **bold**, [text](url) links and bare image URLs. Blank lines separate
// paragraphs; other line breaks become <br>. Input HTML is escaped and the
// result is sanitized.
func ToHTML(text string) string {
	var b strings.Builder
	var para []string
	inList := false

	flush := func() {
		if len(para) > 0 {
			b.WriteString("<p>" + strings.Join(para, "<br>") + "</p>")
			para = nil
		}
	}
	closeList := func() {
		if inList {
			b.WriteString("</ol>")
			inList = false
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if m := listItem.FindStringSubmatch(line); m != nil {
			flush()
			if !inList {
				b.WriteString("<ol>")
				inList = true
			}
			n, _ := strconv.Atoi(m[1])
			b.WriteString(`<li value="` + strconv.Itoa(n) + `">` + inline(m[2]) + "</li>")
			continue
		}
		closeList()
		if line == "" {
			flush()
			continue
		}
		para = append(para, inline(line))
	}
	flush()
	closeList()

	return strings.TrimSpace(Policy().Sanitize(b.String()))
}

func inline(s string) string {
	s = html.EscapeString(s)
	s = image.ReplaceAllString(s, `$1<img src="$2" alt="image">$3`)
	s = link.ReplaceAllString(s, `<a href="$2">$1</a>`)
	return bold.ReplaceAllString(s, "<strong>$1</strong>")
}
