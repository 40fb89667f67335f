package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/internal/config"
	"github.com/quantbird/spreadscan/types"
)

func callTicker(underlying, strike string) string { return "C-" + underlying + "-" + strike }

func callChain(underlying string, strikes []string, expiration time.Time) []types.OptionContract {
	var out []types.OptionContract
	for _, s := range strikes {
		out = append(out, types.OptionContract{
			Ticker:     callTicker(underlying, s),
			Underlying: underlying,
			Strike:     d(s),
			Type:       types.OptionTypeCall,
			Expiration: expiration,
		})
	}
	return out
}

// scenarioBProvider: underlying at 500, next-day daily expiration, $1 strike
// grid. The 495/496 pair costs (5.60-4.90)/2 = 0.35 and qualifies; 498/499
// also qualifies but sits less deep; everything deeper costs too much.
func scenarioBProvider(exp time.Time) *fakeProvider {
	strikes := []string{"490", "491", "492", "493", "494", "495", "496", "497", "498", "499", "500"}
	p := &fakeProvider{
		price:     d("500"),
		contracts: callChain("BIG", strikes, exp),
		nextExp:   exp,
		quotes: map[string]*types.Quote{
			callTicker("BIG", "490"): quote("9.00", "10.60"),  // 490/491 cost 0.83, too rich
			callTicker("BIG", "491"): quote("8.94", "9.70"),   // 491/492 cost 0.81
			callTicker("BIG", "492"): quote("8.08", "8.75"),   // 492/493 cost 0.785
			callTicker("BIG", "493"): quote("7.18", "7.80"),   // 493/494 cost 0.76
			callTicker("BIG", "494"): quote("6.28", "6.85"),   // 494/495 cost 0.755
			callTicker("BIG", "495"): quote("5.34", "5.60"),   // 495/496 cost 0.35 -- qualifies
			callTicker("BIG", "496"): quote("4.90", "5.12"),   // 496/497 cost 0.765
			callTicker("BIG", "497"): quote("3.59", "4.43"),   // 497/498 cost 0.815
			callTicker("BIG", "498"): quote("2.80", "3.25"),   // 498/499 cost 0.625 -- qualifies
			callTicker("BIG", "499"): quote("2.00", "2.45"),   // 499/500 cost 0.825
			callTicker("BIG", "500"): quote("0.80", "1.30"),
		},
	}
	return p
}

func TestFindITMSpread_PicksDeepestQualifyingPair(t *testing.T) {
	exp := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	p := scenarioBProvider(exp)

	eng := newTestEngine(p, config.Default())
	res, err := eng.FindITMSpread(context.Background(), "BIG")
	require.NoError(t, err)
	require.True(t, res.Found, "reason: %s", res.Reason)

	// 495/496 beats the also-qualifying 498/499 on sell-strike depth.
	assert.True(t, res.BuyStrike.Equal(d("495")), "buy strike = %s", res.BuyStrike)
	assert.True(t, res.ShortStrike.Equal(d("496")), "sell strike = %s", res.ShortStrike)
	assert.True(t, res.EntryCost.Equal(d("0.35")), "entry cost = %s", res.EntryCost)
	assert.Equal(t, SpreadITMCallDebit, res.SpreadType)

	// Debit position: the envelope's credit is the premium paid, negated.
	assert.True(t, res.NetCredit.Equal(d("-0.35")))
	assert.True(t, res.MaxRisk.Equal(d("0.35")))
	assert.True(t, res.MaxProfit.Equal(d("0.65")))
	assert.True(t, res.Breakeven.Equal(d("495.35")))

	assert.Equal(t, HighlightBuy, res.Highlights[callTicker("BIG", "495")])
	assert.Equal(t, HighlightSell, res.Highlights[callTicker("BIG", "496")])
	assert.Len(t, res.Highlights, 2)
}

func TestFindITMSpread_CostCeilingFiltersEverything(t *testing.T) {
	exp := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	p := scenarioBProvider(exp)

	cfg := config.Default()
	cfg.MaxCostThreshold = d("0.10") // nothing is this cheap

	eng := newTestEngine(p, cfg)
	res, err := eng.FindITMSpread(context.Background(), "BIG")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, ReasonCostTooHigh, res.Reason)
}

func TestFindITMSpread_MaxProfitScenarioAboveSellStrike(t *testing.T) {
	exp := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	eng := newTestEngine(scenarioBProvider(exp), config.Default())

	res, err := eng.FindITMSpread(context.Background(), "BIG")
	require.NoError(t, err)
	require.True(t, res.Found)

	// At +5% the underlying is far above both strikes: the spread settles at
	// full width and the position earns width - cost.
	var up *ScenarioPoint
	for i := range res.Scenarios {
		if res.Scenarios[i].PriceChangePct.Equal(d("5")) {
			up = &res.Scenarios[i]
		}
	}
	require.NotNil(t, up)
	assert.True(t, up.ProfitLoss.Equal(d("0.65")), "p&l = %s", up.ProfitLoss)
}

func TestFindITMSpread_MissingQuotesOnlyDisableThatPair(t *testing.T) {
	exp := testNow.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	p := scenarioBProvider(exp)
	delete(p.quotes, callTicker("BIG", "495"))

	eng := newTestEngine(p, config.Default())
	res, err := eng.FindITMSpread(context.Background(), "BIG")
	require.NoError(t, err)
	require.True(t, res.Found)
	// 495/496 is unusable without a 495 quote; 498/499 still qualifies.
	assert.True(t, res.BuyStrike.Equal(d("498")))
	assert.True(t, res.ShortStrike.Equal(d("499")))
}
