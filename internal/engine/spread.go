package engine

import (
	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

var hundred = decimal.NewFromInt(100)

// SpreadCandidate is one evaluated short vertical spread. Both legs always
// share expiration and option type; NetCredit and MaxRisk are positive for
// every candidate that survives validation.
type SpreadCandidate struct {
	ShortLeg types.OptionContract
	LongLeg  types.OptionContract

	ShortQuote *types.Quote
	LongQuote  *types.Quote

	Width           decimal.Decimal
	NetCredit       decimal.Decimal
	MaxRisk         decimal.Decimal
	MaxProfit       decimal.Decimal
	ROIPercent      decimal.Decimal // rounded to one decimal place
	Breakeven       decimal.Decimal
	SafetyMarginPct decimal.Decimal
	SafetyNote      string // "below price" or "above price"
}

// ScoredCandidate is a valid candidate with its safety-ranking scores.
type ScoredCandidate struct {
	SpreadCandidate

	DistanceScore float64
	RiskScore     float64
	ROIScore      float64
	TotalScore    float64

	// position in the furthest-first evaluation order, used as the final
	// tie-break so selection stays deterministic
	OrderIndex int
}

// computeEconomics fills in the candidate's economics from its quotes.
// The credit is the conservative executable differential: what the short leg
// actually bids minus what the long leg actually asks. Mid-price averages
// overstate achievable credit and are deliberately not used here.
func computeEconomics(c *SpreadCandidate, currentPrice decimal.Decimal) error {
	if !currentPrice.IsPositive() {
		return &CalculationError{Field: "currentPrice", Msg: "must be positive"}
	}
	if !c.ShortQuote.Tradeable() || !c.LongQuote.Tradeable() {
		return &CalculationError{Field: "quotes", Msg: "both legs need live bid and ask"}
	}

	c.Width = c.ShortLeg.Strike.Sub(c.LongLeg.Strike).Abs()
	c.NetCredit = c.ShortQuote.Bid.Sub(c.LongQuote.Ask)
	c.MaxRisk = c.Width.Sub(c.NetCredit)
	c.MaxProfit = c.NetCredit

	if c.MaxRisk.IsPositive() {
		c.ROIPercent = c.NetCredit.Div(c.MaxRisk).Mul(hundred).Round(1)
	} else {
		c.ROIPercent = decimal.Zero
	}

	switch c.ShortLeg.Type {
	case types.OptionTypePut:
		c.Breakeven = c.ShortLeg.Strike.Sub(c.NetCredit)
	case types.OptionTypeCall:
		c.Breakeven = c.ShortLeg.Strike.Add(c.NetCredit)
	}

	c.SafetyMarginPct = c.ShortLeg.Strike.Sub(currentPrice).Abs().Div(currentPrice).Mul(hundred).Round(1)
	if c.ShortLeg.Strike.LessThan(currentPrice) {
		c.SafetyNote = "below price"
	} else {
		c.SafetyNote = "above price"
	}

	return nil
}

// legSpreadOK checks one leg's market width against the policy ceiling:
// (ask - bid) must not exceed maxPct percent of the spread width.
func legSpreadOK(q *types.Quote, width, maxPct decimal.Decimal) bool {
	limit := width.Mul(maxPct).Div(hundred)
	return q.BidAskSpread().LessThanOrEqual(limit)
}
