package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/types"
)

func TestSelectExpiration_EarliestQualifying(t *testing.T) {
	day := func(n int) time.Time { return testNow.Truncate(24 * time.Hour).AddDate(0, 0, n) }

	var contracts []types.OptionContract
	for _, exp := range []time.Time{day(1), day(5), day(12), day(5)} {
		contracts = append(contracts, types.OptionContract{Strike: d("100"), Type: types.OptionTypePut, Expiration: exp})
	}

	exp, kept, err := selectExpiration(contracts, 3, testNow)
	require.NoError(t, err)
	assert.True(t, exp.Equal(day(5)), "picked %s", exp)
	assert.Len(t, kept, 2)
	for _, c := range kept {
		assert.True(t, c.Expiration.Equal(day(5)))
	}
}

func TestSelectExpiration_MinDTEBoundaryInclusive(t *testing.T) {
	day3 := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 3)
	contracts := []types.OptionContract{{Strike: d("100"), Expiration: day3}}

	exp, _, err := selectExpiration(contracts, 3, testNow)
	require.NoError(t, err)
	assert.True(t, exp.Equal(day3))
}

func TestSelectExpiration_NoneQualify(t *testing.T) {
	day1 := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	contracts := []types.OptionContract{{Strike: d("100"), Expiration: day1}}

	_, _, err := selectExpiration(contracts, 3, testNow)
	assert.ErrorIs(t, err, ErrNoValidExpiration)
}

func TestFilterByType(t *testing.T) {
	contracts := []types.OptionContract{
		{Ticker: "P1", Type: types.OptionTypePut},
		{Ticker: "C1", Type: types.OptionTypeCall},
		{Ticker: "P2", Type: types.OptionTypePut},
	}

	puts, err := filterByType(contracts, types.OptionTypePut)
	require.NoError(t, err)
	assert.Len(t, puts, 2)

	_, err = filterByType([]types.OptionContract{{Ticker: "P1", Type: types.OptionTypePut}}, types.OptionTypeCall)
	assert.ErrorIs(t, err, ErrNoContractsForType)
}
