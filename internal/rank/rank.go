// Package rank orders search results by recency.
package rank

import (
	"slices"
	"time"

	"github.com/mapgpt/mapgpt-go/internal/search"
	"github.com/mapgpt/mapgpt-go/internal/timeparse"
)

// DefaultLimit is the result count used when Options.Limit is not positive.
const DefaultLimit = 5

// Ranked is a result with its normalized publish time.
// SortTimestamp is timeparse.Epoch when the date was missing or unparseable.
type Ranked struct {
	search.Result
	SortTimestamp time.Time
}

// Options controls filtering and truncation.
type Options struct {
	// Since keeps only results published at or after it. Zero means no window.
	Since time.Time
	Limit int
}

// WindowStart returns the start of a recency window of length d ending at now.
func WindowStart(now time.Time, d time.Duration) time.Time {
	return now.Add(-d)
}

// Rank attaches timestamps to results and returns at most Limit of them.
//
// With a window, results inside it are returned newest first. If none fall
// inside, the first Limit results are returned in their original order.
// Without a window, all results are sorted newest first. Sorting is stable.
func Rank(results []search.Result, opts Options, now time.Time) []Ranked {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	all := make([]Ranked, len(results))
	for i, r := range results {
		all[i] = Ranked{Result: r, SortTimestamp: timeparse.Normalize(r.Date, now)}
	}

	if !opts.Since.IsZero() {
		inWindow := make([]Ranked, 0, len(all))
		for _, r := range all {
			if !r.SortTimestamp.Before(opts.Since) {
				inWindow = append(inWindow, r)
			}
		}
		if len(inWindow) == 0 {
			return truncate(all, limit)
		}
		sortNewestFirst(inWindow)
		return truncate(inWindow, limit)
	}

	sortNewestFirst(all)
	return truncate(all, limit)
}

func sortNewestFirst(items []Ranked) {
	slices.SortStableFunc(items, func(a, b Ranked) int {
		return b.SortTimestamp.Compare(a.SortTimestamp)
	})
}

func truncate(items []Ranked, limit int) []Ranked {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
