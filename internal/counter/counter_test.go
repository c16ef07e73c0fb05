package counter

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// countLinear is the reference implementation used to cross-check the
// binary search.
func countLinear(ts []time.Time, cutoff time.Time) int {
	n := 0
	for _, t := range ts {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

func TestCountAfter_Empty(t *testing.T) {
	assert.Equal(t, 0, CountAfter(nil, time.Now()))
	assert.Equal(t, 0, CountAfter([]time.Time{}, time.Now()))
}

func TestCountAfter_TiesNotCounted(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := []time.Time{
		base.Add(-time.Hour),
		base,
		base,
		base.Add(time.Minute),
		base.Add(time.Hour),
	}
	assert.Equal(t, 2, CountAfter(ts, base), "entries equal to cutoff are historical")
}

func TestCountAfter_AllNew(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := []time.Time{base.Add(time.Second), base.Add(time.Minute)}
	assert.Equal(t, 2, CountAfter(ts, base))
}

func TestCountAfter_AllHistorical(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := []time.Time{base.Add(-time.Minute), base.Add(-time.Second), base}
	assert.Equal(t, 0, CountAfter(ts, base))
}

func TestCountAfter_MatchesLinearReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(200)
		ts := make([]time.Time, n)
		for i := range ts {
			// A small offset range forces plenty of duplicates.
			ts[i] = base.Add(time.Duration(rng.Intn(50)) * time.Second)
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

		cutoff := base.Add(time.Duration(rng.Intn(60)-5) * time.Second)

		want := countLinear(ts, cutoff)
		got := CountAfter(ts, cutoff)
		assert.Equal(t, want, got, "iter=%d n=%d cutoff=%v", iter, n, cutoff)
	}
}

func TestCountAfter_DuplicateHeavy(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, 1000)
	for i := range ts {
		ts[i] = base
	}
	assert.Equal(t, 0, CountAfter(ts, base))
	assert.Equal(t, 1000, CountAfter(ts, base.Add(-time.Nanosecond)))
	assert.Equal(t, 0, CountAfter(ts, base.Add(time.Nanosecond)))
}
