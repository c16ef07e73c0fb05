package tier

import (
	"errors"
	"testing"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_WalksTheLadder(t *testing.T) {
	got := []models.Tier{Sequence[0]}
	cur := Sequence[0]
	for {
		n, ok := Next(cur)
		if !ok {
			break
		}
		got = append(got, n)
		cur = n
	}
	assert.Equal(t, Sequence, got)

	_, ok := Next(Terminal)
	assert.False(t, ok, "terminal tier has no successor")
}

func TestParse(t *testing.T) {
	tier, err := Parse("6h")
	require.NoError(t, err)
	assert.Equal(t, models.Tier6h, tier)

	_, err = Parse("48h")
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestParseRequirements_Valid(t *testing.T) {
	reqs, err := ParseRequirements(map[string]int64{
		"24h_to_12h": 250,
		"12h_to_6h":  500,
		"6h_to_3h":   750,
		"3h_to_2h":   1000,
	})
	require.NoError(t, err)

	th, ok := reqs.ThresholdFor(models.Tier12h)
	require.True(t, ok)
	assert.Equal(t, int64(500), th)

	_, ok = reqs.ThresholdFor(models.Tier2h)
	assert.False(t, ok, "terminal tier has no threshold")
}

func TestParseRequirements_Invalid(t *testing.T) {
	cases := map[string]map[string]int64{
		"bad key": {
			"24h-12h": 250, "12h_to_6h": 1, "6h_to_3h": 1, "3h_to_2h": 1,
		},
		"unknown tier": {
			"24h_to_48h": 250, "12h_to_6h": 1, "6h_to_3h": 1, "3h_to_2h": 1,
		},
		"skipping pair": {
			"24h_to_6h": 250, "12h_to_6h": 1, "6h_to_3h": 1, "3h_to_2h": 1,
		},
		"non-positive threshold": {
			"24h_to_12h": 0, "12h_to_6h": 1, "6h_to_3h": 1, "3h_to_2h": 1,
		},
		"missing pair": {
			"24h_to_12h": 250,
		},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRequirements(raw)
			assert.True(t, errors.Is(err, common.ErrConfiguration), "got %v", err)
		})
	}
}
