package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

var two = decimal.NewFromInt(2)

// itmCandidate is one adjacent-strike call debit pair under evaluation.
type itmCandidate struct {
	buy  types.OptionContract // lower strike, bought
	sell types.OptionContract // exactly one width above, sold
	cost decimal.Decimal      // mid-style entry cost
}

// FindITMSpread runs the fixed-window scanner: next-trading-day expiration,
// strikes below the current price, each paired only with the strike exactly
// one width above it, and the deepest in-the-money pair whose entry cost
// clears the ceiling wins. No weighted score; a single deterministic pick.
func (e *Engine) FindITMSpread(ctx context.Context, symbol string) (*ITMScanResult, error) {
	price, err := e.provider.GetUnderlyingPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	expiration, err := e.provider.NextTradingDayExpiration(ctx, symbol)
	if err != nil {
		return nil, err
	}

	contracts, err := e.provider.GetContracts(ctx, symbol, &expiration)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return &ITMScanResult{ScanResult: *notFound(symbol, ErrNoContracts.Error(), 0)}, nil
	}

	calls, err := filterByType(contracts, types.OptionTypeCall)
	if err != nil {
		return &ITMScanResult{ScanResult: *notFound(symbol, err.Error(), 0)}, nil
	}

	// In-the-money universe: strikes strictly below the underlying.
	byStrike := make(map[string]types.OptionContract, len(calls))
	var itm []types.OptionContract
	for _, c := range calls {
		byStrike[c.Strike.String()] = c
		if c.Strike.LessThan(price) {
			itm = append(itm, c)
		}
	}
	if len(itm) == 0 {
		return &ITMScanResult{ScanResult: *notFound(symbol, ErrInsufficientStrikes.Error(), 0)}, nil
	}
	sort.Slice(itm, func(i, j int) bool { return itm[i].Strike.LessThan(itm[j].Strike) })

	// Pair each ITM strike with the contract exactly one width above it.
	var pairs []itmCandidate
	var tickers []string
	for _, buy := range itm {
		sellStrike := buy.Strike.Add(e.cfg.ITMSpreadWidth)
		sell, ok := byStrike[sellStrike.String()]
		if !ok {
			continue
		}
		pairs = append(pairs, itmCandidate{buy: buy, sell: sell})
		tickers = append(tickers, buy.Ticker, sell.Ticker)
	}
	if len(pairs) == 0 {
		return &ITMScanResult{ScanResult: *notFound(symbol, ErrInsufficientStrikes.Error(), 0)}, nil
	}

	cache := newQuoteCache(e.provider)
	cache.fetchBatch(ctx, tickers)

	tally := make(rejectionTally)
	var qualifying []itmCandidate
	for _, p := range pairs {
		buyQuote := cache.get(p.buy.Ticker)
		sellQuote := cache.get(p.sell.Ticker)
		if !buyQuote.Tradeable() || !sellQuote.Tradeable() {
			tally[ReasonQuotesMissing]++
			continue
		}

		// Mid-style entry cost, intentionally different from the credit
		// scanner's executable differential.
		p.cost = buyQuote.Ask.Sub(sellQuote.Bid).Div(two)
		if !p.cost.IsPositive() {
			tally[ReasonQuotesMissing]++
			continue
		}
		if p.cost.GreaterThan(e.cfg.MaxCostThreshold) {
			tally[ReasonCostTooHigh]++
			continue
		}
		qualifying = append(qualifying, p)
	}

	if len(qualifying) == 0 {
		reason := ReasonCostTooHigh
		if tally[ReasonQuotesMissing] > tally[ReasonCostTooHigh] {
			reason = ReasonQuotesMissing
		}
		return &ITMScanResult{ScanResult: *notFound(symbol, reason, cache.externalCalls())}, nil
	}

	// Deepest in the money: the qualifying pair with the lowest sell strike.
	best := qualifying[0]
	for _, p := range qualifying[1:] {
		if p.sell.Strike.LessThan(best.sell.Strike) {
			best = p
		}
	}

	width := best.sell.Strike.Sub(best.buy.Strike)
	maxRisk := best.cost
	maxProfit := width.Sub(best.cost)
	var roi decimal.Decimal
	if maxRisk.IsPositive() {
		roi = maxProfit.Div(maxRisk).Mul(hundred).Round(1)
	}

	highlights := make(map[string]Highlight, 2)
	highlights[best.buy.Ticker] = HighlightBuy
	highlights[best.sell.Ticker] = HighlightSell

	result := &ITMScanResult{
		ScanResult: ScanResult{
			Found:           true,
			Symbol:          symbol,
			SpreadType:      SpreadITMCallDebit,
			Expiration:      formatExpiration(expiration),
			DTE:             best.buy.DTE(e.now()),
			ShortStrike:     best.sell.Strike,
			BuyStrike:       best.buy.Strike,
			ShortContractID: best.sell.Ticker,
			BuyContractID:   best.buy.Ticker,
			NetCredit:       best.cost.Neg(), // debit position: premium paid, not received
			MaxRisk:         maxRisk,
			MaxProfit:       maxProfit,
			ROIPercent:      roi,
			Breakeven:       best.buy.Strike.Add(best.cost),
			SafetyMarginPct: price.Sub(best.sell.Strike).Div(price).Mul(hundred).Round(1),
			SafetyNote:      "below price",
			Scenarios:       projectDebitScenarios(best.buy, best.sell, best.cost, price),
			RiskNote:        "Deep ITM call debit spread: full width collected if the underlying closes above the sell strike; maximum loss is the entry cost.",
			QuoteCalls:      cache.externalCalls(),
		},
		EntryCost:  best.cost,
		Highlights: highlights,
	}

	log.Info().
		Str("symbol", symbol).
		Str("buy", best.buy.Ticker).
		Str("sell", best.sell.Ticker).
		Str("cost", best.cost.StringFixed(2)).
		Int64("quote_calls", cache.externalCalls()).
		Msg("🎯 ITM spread selected")

	return result, nil
}
