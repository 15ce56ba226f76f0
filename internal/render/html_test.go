package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "bold",
			input:    "The HOD is **Dr. Orunsholu**.",
			contains: []string{"<p>The HOD is <strong>Dr. Orunsholu</strong>.</p>"},
		},
		{
			name:     "numbered list",
			input:    "Events:\n1. Orientation\n2. Matriculation",
			contains: []string{"<p>Events:</p>", "<ol>", `<li value="1">Orientation</li>`, `<li value="2">Matriculation</li>`, "</ol>"},
		},
		{
			name:     "link",
			input:    "[Read more](https://www.nacosmapoly.com/news)",
			contains: []string{`href="https://www.nacosmapoly.com/news"`, `target="_blank"`, ">Read more</a>"},
		},
		{
			name:     "bare image url",
			input:    "Campus photo https://example.com/ict.png today",
			contains: []string{`<img src="https://example.com/ict.png"`},
		},
		{
			name:     "line breaks and paragraphs",
			input:    "one\ntwo\n\nthree",
			contains: []string{"<p>one<br", "two</p><p>three</p>"},
		},
		{
			name:     "html is escaped",
			input:    `<script>alert(1)</script><b onclick="x()">hi</b>`,
			contains: []string{"&lt;script&gt;"},
			excludes: []string{"<script>", "<b "},
		},
		{
			name:     "javascript links dropped",
			input:    "[click](javascript:alert(1))",
			excludes: []string{"href=\"javascript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestToHTML_DigestKeepsNumbering(t *testing.T) {
	digest := "1. **First**\nSnippet one\n[Read more](https://n/1)\n\n2. **Second**\nSnippet two\n[Read more](https://n/2)"

	got := ToHTML(digest)

	assert.Contains(t, got, `<li value="1"><strong>First</strong></li>`)
	assert.Contains(t, got, `<li value="2"><strong>Second</strong></li>`)
	assert.Contains(t, got, "Snippet two")
}

func TestToHTML_Empty(t *testing.T) {
	assert.Empty(t, ToHTML(""))
	assert.Empty(t, ToHTML("\n\n"))
}
