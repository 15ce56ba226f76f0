package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapgpt/mapgpt-go/internal/search"
	"github.com/mapgpt/mapgpt-go/internal/timeparse"
)

func titles(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Title
	}
	return out
}

func TestRank_WindowFiltersAndSorts(t *testing.T) {
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	results := []search.Result{
		{Title: "old", Date: "40 days ago"},
		{Title: "mid", Date: "20 days ago"},
		{Title: "new", Date: "5 days ago"},
	}

	got := Rank(results, Options{Since: WindowStart(now, 30*24*time.Hour), Limit: 5}, now)

	assert.Equal(t, []string{"new", "mid"}, titles(got))
	assert.WithinDuration(t, now.Add(-5*24*time.Hour), got[0].SortTimestamp, time.Second)
}

func TestRank_EmptyWindowFallsBackToSourceOrder(t *testing.T) {
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	results := []search.Result{
		{Title: "a", Date: "90 days ago"},
		{Title: "b", Date: ""},
		{Title: "c", Date: "60 days ago"},
		{Title: "d", Date: "garbage"},
	}

	got := Rank(results, Options{Since: WindowStart(now, 30*24*time.Hour), Limit: 3}, now)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, titles(got))
}

func TestRank_NoWindowSortsStable(t *testing.T) {
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	results := []search.Result{
		{Title: "undated-1"},
		{Title: "week", Date: "1 week ago"},
		{Title: "undated-2", Date: "???"},
		{Title: "hour", Date: "1 hour ago"},
		{Title: "same-day-a", Date: "2025-04-19"},
		{Title: "same-day-b", Date: "2025-04-19"},
	}

	got := Rank(results, Options{Limit: 10}, now)

	assert.Equal(t, []string{"hour", "same-day-a", "same-day-b", "week", "undated-1", "undated-2"}, titles(got))
	assert.True(t, timeparse.IsEpoch(got[4].SortTimestamp))
}

func TestRank_DefaultLimit(t *testing.T) {
	now := time.Now()
	results := make([]search.Result, 8)
	for i := range results {
		results[i] = search.Result{Title: string(rune('a' + i))}
	}

	assert.Len(t, Rank(results, Options{}, now), DefaultLimit)
	assert.Len(t, Rank(results, Options{Limit: 2}, now), 2)
	assert.Empty(t, Rank(nil, Options{}, now))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	results := []search.Result{
		{Title: "older", Date: "2 days ago"},
		{Title: "newer", Date: "1 day ago"},
	}

	_ = Rank(results, Options{}, now)

	assert.Equal(t, "older", results[0].Title)
}

func TestRank_WindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	results := []search.Result{{Title: "edge", Date: "30 days ago"}}

	got := Rank(results, Options{Since: WindowStart(now, 30*24*time.Hour)}, now)

	require.Len(t, got, 1)
	assert.Equal(t, "edge", got[0].Title)
}
