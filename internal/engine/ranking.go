package engine

import (
	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

// Safety-ranking weights. Distance from the money dominates, then risk size,
// then yield.
const (
	weightDistance = 0.50
	weightRisk     = 0.30
	weightROI      = 0.20

	roiScoreScale = 15.0 // top of the target band maps to a full roi score
)

// scoreCandidate fills in the weighted safety scores for one candidate.
// Pure: identical inputs always produce identical scores.
func scoreCandidate(c *ScoredCandidate, currentPrice decimal.Decimal, trend types.Trend) {
	var ratio decimal.Decimal
	switch trend {
	case types.TrendUp:
		ratio = currentPrice.Sub(c.ShortLeg.Strike).Div(currentPrice)
	case types.TrendDown:
		ratio = c.ShortLeg.Strike.Sub(currentPrice).Div(currentPrice)
	}
	distance := ratio.InexactFloat64()
	if distance < 0 {
		distance = 0
	}

	c.DistanceScore = distance * weightDistance
	c.RiskScore = (1 / c.MaxRisk.InexactFloat64()) * weightRisk
	c.ROIScore = (c.ROIPercent.InexactFloat64() / roiScoreScale) * weightROI
	c.TotalScore = c.DistanceScore + c.RiskScore + c.ROIScore
}

// selectBest scores every valid candidate and returns the winner: highest
// total score, ties broken by smaller max risk, then by earliest position in
// the furthest-first evaluation order. Returns nil for an empty slate.
func selectBest(candidates []ScoredCandidate, currentPrice decimal.Decimal, trend types.Trend) *ScoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	for i := range candidates {
		scoreCandidate(&candidates[i], currentPrice, trend)
	}

	best := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		best = betterOf(best, &candidates[i])
	}
	return best
}

// betterOf compares two scored candidates: higher total score wins, ties go
// to the smaller max risk, then to the earlier evaluation position.
func betterOf(a, b *ScoredCandidate) *ScoredCandidate {
	if b.TotalScore != a.TotalScore {
		if b.TotalScore > a.TotalScore {
			return b
		}
		return a
	}
	if cmp := b.MaxRisk.Cmp(a.MaxRisk); cmp != 0 {
		if cmp < 0 {
			return b
		}
		return a
	}
	if b.OrderIndex < a.OrderIndex {
		return b
	}
	return a
}
