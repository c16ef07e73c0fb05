// Package tier implements the burn-in tier ladder and the pure advancement
// state machine. Transitions are functions over an immutable device record
// that produce a new record plus a list of intended side effects; no I/O
// happens here.
package tier

import (
	"fmt"
	"strings"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/models"
)

// Sequence is the fixed, strictly ordered tier ladder. A device only ever
// moves one step forward per approval.
var Sequence = []models.Tier{
	models.Tier24h,
	models.Tier12h,
	models.Tier6h,
	models.Tier3h,
	models.Tier2h,
}

// Terminal is the last tier in the sequence. It never generates further
// advancement requests.
const Terminal = models.Tier2h

var next = map[models.Tier]models.Tier{
	models.Tier24h: models.Tier12h,
	models.Tier12h: models.Tier6h,
	models.Tier6h:  models.Tier3h,
	models.Tier3h:  models.Tier2h,
}

// Next returns the tier following t in the sequence. ok is false when t is
// terminal or unknown.
func Next(t models.Tier) (models.Tier, bool) {
	n, ok := next[t]
	return n, ok
}

// Parse validates a tier name from configuration.
func Parse(s string) (models.Tier, error) {
	for _, t := range Sequence {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tier %q", common.ErrConfiguration, s)
}

// Requirements maps a tier to the file count required before the transition
// out of that tier may be requested. The terminal tier has no entry.
type Requirements map[models.Tier]int64

// ThresholdFor returns the advancement threshold for t. ok is false for the
// terminal tier.
func (r Requirements) ThresholdFor(t models.Tier) (int64, bool) {
	th, ok := r[t]
	return th, ok
}

// ParseRequirements converts the configuration form ("24h_to_12h": 250)
// into a Requirements map, validating that every key names an adjacent
// tier pair and every threshold is positive.
func ParseRequirements(raw map[string]int64) (Requirements, error) {
	reqs := make(Requirements, len(raw))
	for key, threshold := range raw {
		from, to, ok := strings.Cut(key, "_to_")
		if !ok {
			return nil, fmt.Errorf("%w: invalid tier requirement key %q", common.ErrConfiguration, key)
		}
		fromTier, err := Parse(from)
		if err != nil {
			return nil, err
		}
		toTier, err := Parse(to)
		if err != nil {
			return nil, err
		}
		n, ok := Next(fromTier)
		if !ok || n != toTier {
			return nil, fmt.Errorf("%w: %q is not an adjacent tier pair", common.ErrConfiguration, key)
		}
		if threshold <= 0 {
			return nil, fmt.Errorf("%w: non-positive threshold %d for %q", common.ErrConfiguration, threshold, key)
		}
		reqs[fromTier] = threshold
	}
	for _, t := range Sequence[:len(Sequence)-1] {
		if _, ok := reqs[t]; !ok {
			return nil, fmt.Errorf("%w: missing threshold for tier %q", common.ErrConfiguration, t)
		}
	}
	return reqs, nil
}
