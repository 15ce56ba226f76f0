// Package timeparse turns the heterogeneous date strings found in search
// results ("3 hours ago", "Mar 4, 2025", RFC 3339) into comparable instants.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Epoch is returned for empty or unparseable input. It sorts as the oldest
// possible instant and is a valid result, not an error.
var Epoch = time.Unix(0, 0).UTC()

var relativePattern = regexp.MustCompile(`(?i)(\d+)\s+(minute|hour|day|week)s?\s+ago`)

var unitDurations = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// Normalize converts text to an instant. Relative "N unit(s) ago" phrases are
// resolved against now; anything else goes through a general date parser.
// Callers ranking a batch should capture now once and pass it to every call.
func Normalize(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return Epoch
	}

	if m := relativePattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Epoch
		}
		unit := unitDurations[strings.ToLower(m[2])]
		// Counts whose duration does not fit in int64 would wrap into the future.
		if n > math.MaxInt64/int64(unit) {
			return Epoch
		}
		return now.Add(-time.Duration(n) * unit)
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return Epoch
	}
	return t
}

// IsEpoch reports whether t is the "no date" sentinel.
func IsEpoch(t time.Time) bool {
	return t.Equal(Epoch)
}
