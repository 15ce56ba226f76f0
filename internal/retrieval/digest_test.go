package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapgpt/mapgpt-go/internal/rank"
	"github.com/mapgpt/mapgpt-go/internal/search"
)

func TestFormatDigest(t *testing.T) {
	ranked := []rank.Ranked{
		{Result: search.Result{Title: "Resumption", Link: "https://a.example", Snippet: "Lectures resume Monday", Date: "2 days ago"}},
		{Result: search.Result{Title: "Fees", Link: "https://b.example", Snippet: "New fee schedule"}},
	}

	got := FormatDigest(ranked, NoWebResults)

	want := "1. **Resumption**\n🗓 2 days ago\nLectures resume Monday\n[Read more](https://a.example)" +
		"\n\n" +
		"2. **Fees**\nNew fee schedule\n[Read more](https://b.example)"
	assert.Equal(t, want, got)
}

func TestFormatDigest_EmptyUsesLiteral(t *testing.T) {
	assert.Equal(t, NoNewsSourceResults, FormatDigest(nil, NoNewsSourceResults))
	assert.Equal(t, NoRecentResults, FormatDigest([]rank.Ranked{}, NoRecentResults))
}
