package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	b := Default()

	require.NoError(t, b.Validate())
	assert.Equal(t, 3, b.Topics.Len())
	assert.Contains(t, b.InstitutionTokens, "mapoly")
	assert.NotEmpty(t, b.Refusal)
}

func TestTable_MatchCumulativeInTableOrder(t *testing.T) {
	table := NewTable(
		Topic{Name: "Alpha", Keywords: []string{"alpha"}, Facts: []string{"A1"}},
		Topic{Name: "Beta", Keywords: []string{"beta"}, Facts: []string{"B1"}},
		Topic{Name: "Gamma", Keywords: []string{"gamma"}, Facts: []string{"G1"}},
	)

	// Prompt mentions gamma before alpha; output still follows table order.
	got := table.Match("tell me about gamma and alpha")

	assert.Equal(t, "Department: Alpha\nA1 Department: Gamma\nG1", got)
	assert.Equal(t, []string{"Alpha", "Gamma"}, table.MatchedTopics("tell me about gamma and alpha"))
}

func TestTable_NoMatch(t *testing.T) {
	table := Default().Topics
	assert.Empty(t, table.Match("where is the library"))
	assert.Empty(t, table.MatchedTopics("where is the library"))
}

func TestTable_SubstringQuirk(t *testing.T) {
	table := Default().Topics

	// "ee" is an Electrical Engineering alias and matches inside "see".
	assert.Equal(t, []string{"Electrical Engineering"}, table.MatchedTopics("i want to see the bursar"))
	// "cs" matches inside "physics".
	assert.Equal(t, []string{"Computer Science"}, table.MatchedTopics("physics lab"))
}

func TestTable_MentionsTopicIgnoresShortAliases(t *testing.T) {
	table := Default().Topics

	assert.False(t, table.MentionsTopic("i want to see the bursar"))
	assert.False(t, table.MentionsTopic("physics lab"))
	assert.True(t, table.MentionsTopic("elect eng timetable"))
	assert.True(t, table.MentionsTopic("computer science"))
}

func TestTable_Aliases(t *testing.T) {
	table := Default().Topics

	tests := []struct {
		prompt string
		want   string
	}{
		{"who is the hod of comp sci", "Computer Science"},
		{"where is the computer dept", "Computer Science"},
		{"biz admin lecturers", "Business Administration"},
		{"elect eng timetable", "Electrical Engineering"},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Contains(t, table.MatchedTopics(tt.prompt), tt.want)
		})
	}
}

func TestNewTable_NormalizesKeywords(t *testing.T) {
	table := NewTable(Topic{Name: " X ", Keywords: []string{"Foo", "foo", " ", "BAR "}, Facts: []string{"f"}})

	topics := table.Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, "X", topics[0].Name)
	assert.Equal(t, []string{"foo", "bar"}, topics[0].Keywords)
}

func TestBase_IsHelp(t *testing.T) {
	b := Default()

	for _, p := range []string{"help", "HELP", " commands ", "What can you do?", "help!"} {
		assert.True(t, b.IsHelp(p), p)
	}
	for _, p := range []string{"help me find the cs department", "", "commands please"} {
		assert.False(t, b.IsHelp(p), p)
	}
}

func TestBase_InDomain(t *testing.T) {
	b := Default()

	tests := []struct {
		prompt string
		want   bool
	}{
		{"what is the latest mapoly news", true},
		{"when is matriculation", true},
		{"who heads computer science", true},
		{"what is the capital of france", false},
		{"write me a poem about cats", false},
		{"hod of cs", true},
		{"any comp sci events", true},
		// Short aliases inside ordinary words do not count.
		{"i need a good jollof rice recipe", false},
		{"who won the football match last week?", false},
		{"tell me about physics homework", false},
		{"give me free movie tips", false},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, b.InDomain(tt.prompt))
		})
	}
}

func TestBase_SystemInstruction(t *testing.T) {
	b := Default()
	got := b.SystemInstruction()

	assert.True(t, strings.HasPrefix(got, "You are a helpful assistant providing accurate information about Moshood Abiola Polytechnic (MAPOLY)"))
	assert.Contains(t, got, "Recent updates:\n1. ")
	assert.Contains(t, got, "Only answer questions about MAPOLY.")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"malformed json", `{`, "decode knowledge"},
		{"unknown field", `{"bogus": 1}`, "decode knowledge"},
		{"empty document", `{}`, "school_name"},
		{
			name: "duplicate topic",
			doc: `{"general":{"school_name":"S","location":"L"},"institution_tokens":["s"],"domain_keywords":["s"],
				"help":{"phrases":["help"],"text":"t"},"refusal":"r",
				"topics":[{"name":"A","keywords":["a"],"facts":["x"]},{"name":"a","keywords":["b"],"facts":["y"]}]}`,
			want: "duplicate name",
		},
		{
			name: "topic without keywords",
			doc: `{"general":{"school_name":"S","location":"L"},"institution_tokens":["s"],"domain_keywords":["s"],
				"help":{"phrases":["help"],"text":"t"},"refusal":"r",
				"topics":[{"name":"A","keywords":[" "],"facts":["x"]}]}`,
			want: "no keywords",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, Embedded(), 0o600))

	b, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().General, b.General)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
