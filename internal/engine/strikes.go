package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

var (
	bandLow  = decimal.NewFromFloat(0.85)
	bandHigh = decimal.NewFromFloat(1.15)

	// directional safety thresholds: short puts stay under 95% of price in
	// an uptrend, short calls stay over 105% in a downtrend
	putCeiling = decimal.NewFromFloat(0.95)
	callFloor  = decimal.NewFromFloat(1.05)
)

// filterStrikes narrows one expiration's contracts of one type to the
// trend-safe strike band, sorted ascending by strike.
func filterStrikes(contracts []types.OptionContract, currentPrice decimal.Decimal, trend types.Trend) ([]types.OptionContract, error) {
	if !currentPrice.IsPositive() {
		return nil, &CalculationError{Field: "currentPrice", Msg: "must be positive"}
	}

	low := currentPrice.Mul(bandLow)
	high := currentPrice.Mul(bandHigh)

	var out []types.OptionContract
	for _, c := range contracts {
		if c.Strike.LessThan(low) || c.Strike.GreaterThan(high) {
			continue
		}
		switch trend {
		case types.TrendUp:
			if c.Strike.GreaterThanOrEqual(currentPrice.Mul(putCeiling)) {
				continue
			}
		case types.TrendDown:
			if c.Strike.LessThanOrEqual(currentPrice.Mul(callFloor)) {
				continue
			}
		}
		out = append(out, c)
	}

	if len(out) < 2 {
		return nil, ErrInsufficientStrikes
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Strike.LessThan(out[j].Strike) })
	return out, nil
}
