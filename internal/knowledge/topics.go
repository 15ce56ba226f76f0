package knowledge

import (
	"strings"
	"unicode/utf8"

	"github.com/mapgpt/mapgpt-go/internal/sliceutil"
)

// Topic is a named knowledge block selected by keyword.
type Topic struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Facts    []string `json:"facts"`
}

// Text renders the block spliced into prompts when the topic matches.
func (t Topic) Text() string {
	var b strings.Builder
	b.WriteString("Department: ")
	b.WriteString(t.Name)
	for _, fact := range t.Facts {
		b.WriteString("\n")
		b.WriteString(fact)
	}
	return b.String()
}

// matches reports whether any keyword occurs in promptLower.
// Plain substring containment: "ee" also matches "see" and "cs" matches "physics".
func (t Topic) matches(promptLower string) bool {
	for _, kw := range t.Keywords {
		if strings.Contains(promptLower, kw) {
			return true
		}
	}
	return false
}

// MinGateKeywordLength is the shortest topic keyword that on its own places a
// prompt in the institution's domain. Shorter aliases ("cs", "ee") turn up
// inside everyday words and only select context once a prompt is in domain.
const MinGateKeywordLength = 4

// Table is an ordered, read-only topic list. Iteration order is the order the
// topics were given in and decides the order of concatenated context.
type Table struct {
	topics []Topic
}

// NewTable builds a table. Keywords are lowercased, trimmed and deduplicated.
func NewTable(topics ...Topic) *Table {
	normalized := make([]Topic, len(topics))
	for i, t := range topics {
		keywords := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized[i] = Topic{
			Name:     strings.TrimSpace(t.Name),
			Keywords: sliceutil.Deduplicate(keywords, func(s string) string { return s }),
			Facts:    append([]string(nil), t.Facts...),
		}
	}
	return &Table{topics: normalized}
}

// Match returns the text of every topic referenced by promptLower, in table
// order, joined by a single space. Empty when nothing matches.
func (t *Table) Match(promptLower string) string {
	var parts []string
	for _, topic := range t.topics {
		if topic.matches(promptLower) {
			parts = append(parts, topic.Text())
		}
	}
	return strings.Join(parts, " ")
}

// MatchedTopics returns the names of the topics Match would use.
func (t *Table) MatchedTopics(promptLower string) []string {
	var names []string
	for _, topic := range t.topics {
		if topic.matches(promptLower) {
			names = append(names, topic.Name)
		}
	}
	return names
}

// MentionsTopic reports whether promptLower contains a topic keyword of at
// least MinGateKeywordLength runes.
func (t *Table) MentionsTopic(promptLower string) bool {
	for _, topic := range t.topics {
		for _, kw := range topic.Keywords {
			if utf8.RuneCountInString(kw) >= MinGateKeywordLength && strings.Contains(promptLower, kw) {
				return true
			}
		}
	}
	return false
}

// Topics returns a copy of the table's topics.
func (t *Table) Topics() []Topic {
	return append([]Topic(nil), t.topics...)
}

// Len returns the number of topics.
func (t *Table) Len() int {
	return len(t.topics)
}
