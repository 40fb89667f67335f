package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/internal/config"
	"github.com/quantbird/spreadscan/types"
)

// pairing is one short/long strike combination awaiting evaluation.
type pairing struct {
	short    types.OptionContract
	long     types.OptionContract
	distance decimal.Decimal // |short strike - current price|
}

// buildPairings generates every (i<j) strike pair with trend-mapped roles and
// orders them furthest-first by short-strike distance from the underlying, so
// the safest candidates are evaluated before the riskiest. The sort is stable:
// equal distances keep generation order, which keeps scans deterministic.
func buildPairings(contracts []types.OptionContract, currentPrice decimal.Decimal, trend types.Trend) []pairing {
	var pairs []pairing
	for i := 0; i < len(contracts); i++ {
		for j := i + 1; j < len(contracts); j++ {
			var p pairing
			switch trend {
			case types.TrendUp:
				// bull put: sell the higher strike, buy the lower
				p = pairing{short: contracts[j], long: contracts[i]}
			case types.TrendDown:
				// bear call: sell the lower strike, buy the higher
				p = pairing{short: contracts[i], long: contracts[j]}
			default:
				continue
			}
			p.distance = p.short.Strike.Sub(currentPrice).Abs()
			pairs = append(pairs, p)
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].distance.GreaterThan(pairs[j].distance)
	})
	return pairs
}

// rejectionTally tracks why pairs were rejected so a scan that finds nothing
// can report the dominant reason instead of a shrug.
type rejectionTally map[string]int

// reasonPriority breaks count ties deterministically, most specific first.
var reasonPriority = []string{
	ReasonROIOutOfBand,
	ReasonBidAskTooWide,
	ReasonQuotesMissing,
	ReasonNoCredit,
	ReasonSpreadTooWide,
}

func (t rejectionTally) dominant() string {
	best, bestCount := ReasonNoQualifying, 0
	for _, reason := range reasonPriority {
		if t[reason] > bestCount {
			best, bestCount = reason, t[reason]
		}
	}
	return best
}

// evaluatePairs walks the ordered pairings in fixed-size batches, prefetching
// both legs' quotes concurrently per batch, and stops issuing batches once
// enough valid candidates exist. Returns the valid candidates in evaluation
// order plus the rejection tally.
func evaluatePairs(ctx context.Context, cache *quoteCache, pairs []pairing, currentPrice decimal.Decimal, cfg config.EngineConfig, enforceROI bool) ([]ScoredCandidate, rejectionTally, error) {
	var valid []ScoredCandidate
	tally := make(rejectionTally)

	batchSize := cfg.QuoteBatchSize
	for start := 0; start < len(pairs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := pairs[start:end]

		// Width is known without quotes; only spend budget on pairs that
		// can still qualify.
		var tickers []string
		for _, p := range batch {
			if spreadWidth(p).GreaterThan(cfg.MaxSpreadWidth) {
				continue
			}
			tickers = append(tickers, p.short.Ticker, p.long.Ticker)
		}
		cache.fetchBatch(ctx, tickers)

		for i, p := range batch {
			cand, reason, err := evaluateOne(cache, p, currentPrice, cfg, enforceROI)
			if err != nil {
				return nil, nil, err
			}
			if reason != "" {
				tally[reason]++
				continue
			}
			cand.OrderIndex = start + i
			valid = append(valid, *cand)
		}

		if len(valid) >= cfg.EarlyExitValidCount {
			log.Debug().Int("valid", len(valid)).Int("evaluated", end).Msg("Early exit, enough valid candidates")
			break
		}
	}

	return valid, tally, nil
}

func spreadWidth(p pairing) decimal.Decimal {
	return p.short.Strike.Sub(p.long.Strike).Abs()
}

// evaluateOne applies the full validity rule to a single pair. It returns
// either a candidate or the rejection reason.
func evaluateOne(cache *quoteCache, p pairing, currentPrice decimal.Decimal, cfg config.EngineConfig, enforceROI bool) (*ScoredCandidate, string, error) {
	width := spreadWidth(p)
	if width.GreaterThan(cfg.MaxSpreadWidth) {
		return nil, ReasonSpreadTooWide, nil
	}

	shortQuote := cache.get(p.short.Ticker)
	longQuote := cache.get(p.long.Ticker)
	if !shortQuote.Tradeable() || !longQuote.Tradeable() {
		return nil, ReasonQuotesMissing, nil
	}

	// Reject untradeable wide markets before looking at the economics.
	if !legSpreadOK(shortQuote, width, cfg.MaxBidAskSpreadPct) || !legSpreadOK(longQuote, width, cfg.MaxBidAskSpreadPct) {
		return nil, ReasonBidAskTooWide, nil
	}

	cand := &ScoredCandidate{SpreadCandidate: SpreadCandidate{
		ShortLeg:   p.short,
		LongLeg:    p.long,
		ShortQuote: shortQuote,
		LongQuote:  longQuote,
	}}
	if err := computeEconomics(&cand.SpreadCandidate, currentPrice); err != nil {
		return nil, "", err
	}

	if !cand.NetCredit.IsPositive() || !cand.MaxRisk.IsPositive() {
		return nil, ReasonNoCredit, nil
	}

	if enforceROI {
		if cand.ROIPercent.LessThan(cfg.ROIMin) || cand.ROIPercent.GreaterThan(cfg.ROIMax) {
			return nil, ReasonROIOutOfBand, nil
		}
	}

	return cand, "", nil
}
