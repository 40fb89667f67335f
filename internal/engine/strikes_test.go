package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/types"
)

func TestFilterStrikes_UptrendKeepsSafePutBand(t *testing.T) {
	chain := putChain("XYZ", []string{"80", "85", "90", "94.9", "95", "100", "110", "115", "120"}, testNow)

	out, err := filterStrikes(chain, d("100"), types.TrendUp)
	require.NoError(t, err)

	// Band floor 85, directional ceiling 95 (exclusive).
	var strikes []string
	for _, c := range out {
		strikes = append(strikes, c.Strike.String())
	}
	assert.Equal(t, []string{"85", "90", "94.9"}, strikes)
}

func TestFilterStrikes_DowntrendKeepsSafeCallBand(t *testing.T) {
	var chain []types.OptionContract
	for _, s := range []string{"90", "100", "105", "105.1", "110", "115", "116"} {
		chain = append(chain, types.OptionContract{Strike: d(s), Type: types.OptionTypeCall, Expiration: testNow})
	}

	out, err := filterStrikes(chain, d("100"), types.TrendDown)
	require.NoError(t, err)

	// Directional floor 105 (exclusive), band ceiling 115.
	var strikes []string
	for _, c := range out {
		strikes = append(strikes, c.Strike.String())
	}
	assert.Equal(t, []string{"105.1", "110", "115"}, strikes)
}

func TestFilterStrikes_SortsAscending(t *testing.T) {
	chain := putChain("XYZ", []string{"92", "86", "90", "88"}, testNow)

	out, err := filterStrikes(chain, d("100"), types.TrendUp)
	require.NoError(t, err)
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].Strike.LessThan(out[i].Strike))
	}
}

func TestFilterStrikes_InsufficientStrikes(t *testing.T) {
	chain := putChain("XYZ", []string{"90"}, testNow)
	_, err := filterStrikes(chain, d("100"), types.TrendUp)
	assert.ErrorIs(t, err, ErrInsufficientStrikes)
}
