// Package counter implements cutoff counting over sorted timestamp slices.
package counter

import (
	"sort"
	"time"
)

// CountAfter returns the number of entries in sorted that are strictly
// after cutoff. sorted must be ascending; entries equal to the cutoff are
// not counted as new. Runs in O(log n).
func CountAfter(sorted []time.Time, cutoff time.Time) int {
	// Rightmost insertion point for cutoff: the first index whose value is
	// strictly greater than the cutoff. Everything at or before it is
	// historical.
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].After(cutoff)
	})
	return len(sorted) - idx
}
