package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/types"
)

func TestBuildPairings_UptrendRoles(t *testing.T) {
	contracts := putChain("NVDA", []string{"85", "90", "95"}, testNow.AddDate(0, 0, 10))

	pairs := buildPairings(contracts, d("100"), types.TrendUp)
	require.Len(t, pairs, 3)

	// Bull put: the short leg is always the higher strike of the pair.
	for _, p := range pairs {
		assert.True(t, p.short.Strike.GreaterThan(p.long.Strike),
			"short %s should be above long %s", p.short.Strike, p.long.Strike)
	}
}

func TestBuildPairings_DowntrendRoles(t *testing.T) {
	contracts := putChain("NVDA", []string{"106", "110", "115"}, testNow.AddDate(0, 0, 10))
	for i := range contracts {
		contracts[i].Type = types.OptionTypeCall
	}

	pairs := buildPairings(contracts, d("100"), types.TrendDown)
	require.Len(t, pairs, 3)

	// Bear call: sell the lower strike, buy the higher.
	for _, p := range pairs {
		assert.True(t, p.short.Strike.LessThan(p.long.Strike))
	}
}

func TestBuildPairings_FurthestShortStrikeFirst(t *testing.T) {
	contracts := putChain("NVDA", []string{"85", "90", "95"}, testNow.AddDate(0, 0, 10))

	pairs := buildPairings(contracts, d("100"), types.TrendUp)
	require.Len(t, pairs, 3)

	// Distances from 100: short 90 (85/90) -> 10, short 95 -> 5 twice.
	assert.True(t, pairs[0].short.Strike.Equal(d("90")))
	assert.True(t, pairs[0].long.Strike.Equal(d("85")))

	for i := 1; i < len(pairs); i++ {
		assert.True(t, pairs[i-1].distance.GreaterThanOrEqual(pairs[i].distance),
			"pair %d closer than pair %d", i-1, i)
	}

	// Equal distances keep generation order: (85,95) precedes (90,95).
	assert.True(t, pairs[1].long.Strike.Equal(d("85")))
	assert.True(t, pairs[2].long.Strike.Equal(d("90")))
}

func TestBuildPairings_UnknownTrend(t *testing.T) {
	contracts := putChain("NVDA", []string{"85", "90"}, testNow.AddDate(0, 0, 10))
	assert.Empty(t, buildPairings(contracts, d("100"), types.Trend("sideways")))
}

func TestRejectionTally_Dominant(t *testing.T) {
	tally := rejectionTally{
		ReasonSpreadTooWide: 4,
		ReasonROIOutOfBand:  2,
	}
	assert.Equal(t, ReasonSpreadTooWide, tally.dominant())

	// Ties resolve toward the more specific reason.
	tally[ReasonROIOutOfBand] = 4
	assert.Equal(t, ReasonROIOutOfBand, tally.dominant())

	assert.Equal(t, ReasonNoQualifying, rejectionTally{}.dominant())
}
