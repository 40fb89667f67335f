package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

// ScenarioPoint is the projected expiration P&L for one hypothetical move in
// the underlying.
type ScenarioPoint struct {
	PriceChangePct           decimal.Decimal `json:"price_change_pct"`
	ProjectedUnderlyingPrice decimal.Decimal `json:"projected_underlying_price"`
	ShortLegValue            decimal.Decimal `json:"short_leg_value"`
	LongLegValue             decimal.Decimal `json:"long_leg_value"`
	ProfitLoss               decimal.Decimal `json:"profit_loss"`
	ProfitLossPct            decimal.Decimal `json:"profit_loss_pct"`
}

// scenarioMoves is the fixed ladder of hypothetical percentage moves.
var scenarioMoves = []decimal.Decimal{
	decimal.NewFromInt(-10),
	decimal.NewFromInt(-5),
	decimal.NewFromFloat(-2.5),
	decimal.NewFromInt(-1),
	decimal.Zero,
	decimal.NewFromInt(1),
	decimal.NewFromFloat(2.5),
	decimal.NewFromInt(5),
	decimal.NewFromInt(10),
}

// intrinsicValue is the option's value at expiration for a given underlying
// price.
func intrinsicValue(strike decimal.Decimal, optType types.OptionType, price decimal.Decimal) decimal.Decimal {
	var v decimal.Decimal
	switch optType {
	case types.OptionTypeCall:
		v = price.Sub(strike)
	case types.OptionTypePut:
		v = strike.Sub(price)
	}
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// projectScenarios computes expiration P&L for a credit spread across the
// scenario ladder. Settling the position at expiration costs the short leg's
// intrinsic value less the long hedge's, so profit is the collected credit
// minus that settlement cost. Both legs worthless means the full credit.
func projectScenarios(c *SpreadCandidate, currentPrice decimal.Decimal) []ScenarioPoint {
	points := make([]ScenarioPoint, 0, len(scenarioMoves))
	for _, move := range scenarioMoves {
		projected := currentPrice.Mul(decimal.NewFromInt(1).Add(move.Div(hundred))).Round(2)

		shortVal := intrinsicValue(c.ShortLeg.Strike, c.ShortLeg.Type, projected)
		longVal := intrinsicValue(c.LongLeg.Strike, c.LongLeg.Type, projected)

		spreadCost := shortVal.Sub(longVal)
		pl := c.NetCredit.Sub(spreadCost).Round(2)

		var plPct decimal.Decimal
		if c.MaxRisk.IsPositive() {
			plPct = pl.Div(c.MaxRisk).Mul(hundred).Round(1)
		}

		points = append(points, ScenarioPoint{
			PriceChangePct:           move,
			ProjectedUnderlyingPrice: projected,
			ShortLegValue:            shortVal,
			LongLegValue:             longVal,
			ProfitLoss:               pl,
			ProfitLossPct:            plPct,
		})
	}
	return points
}

// projectDebitScenarios is the debit-spread counterpart used by the
// fixed-window scanner: the position is owned, so P&L is what the spread is
// worth at expiration minus what it cost to enter.
func projectDebitScenarios(buy, sell types.OptionContract, cost, currentPrice decimal.Decimal) []ScenarioPoint {
	points := make([]ScenarioPoint, 0, len(scenarioMoves))
	for _, move := range scenarioMoves {
		projected := currentPrice.Mul(decimal.NewFromInt(1).Add(move.Div(hundred))).Round(2)

		buyVal := intrinsicValue(buy.Strike, buy.Type, projected)
		sellVal := intrinsicValue(sell.Strike, sell.Type, projected)

		pl := buyVal.Sub(sellVal).Sub(cost).Round(2)

		var plPct decimal.Decimal
		if cost.IsPositive() {
			plPct = pl.Div(cost).Mul(hundred).Round(1)
		}

		points = append(points, ScenarioPoint{
			PriceChangePct:           move,
			ProjectedUnderlyingPrice: projected,
			ShortLegValue:            sellVal,
			LongLegValue:             buyVal,
			ProfitLoss:               pl,
			ProfitLossPct:            plPct,
		})
	}
	return points
}

// riskNote describes the position's exposure in words for the caller's UI.
func riskNote(trend types.Trend, optType types.OptionType, c *SpreadCandidate) string {
	switch {
	case trend == types.TrendUp && optType == types.OptionTypePut:
		return fmt.Sprintf("Bull put spread: full %s credit kept if the underlying stays above %s at expiration; maximum loss of %s if it closes below %s.",
			c.NetCredit.StringFixed(2), c.ShortLeg.Strike.StringFixed(2), c.MaxRisk.StringFixed(2), c.LongLeg.Strike.StringFixed(2))
	case trend == types.TrendDown && optType == types.OptionTypeCall:
		return fmt.Sprintf("Bear call spread: full %s credit kept if the underlying stays below %s at expiration; maximum loss of %s if it closes above %s.",
			c.NetCredit.StringFixed(2), c.ShortLeg.Strike.StringFixed(2), c.MaxRisk.StringFixed(2), c.LongLeg.Strike.StringFixed(2))
	default:
		return "Credit spread: maximum profit is the collected credit, maximum loss is the spread width minus the credit."
	}
}
