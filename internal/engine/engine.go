// Package engine selects short vertical option spreads. Everything in here is
// deterministic: market access goes through the injected Provider, every scan
// owns its own quote cache, and no state survives a scan.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantbird/spreadscan/internal/config"
	"github.com/quantbird/spreadscan/internal/marketdata"
	"github.com/quantbird/spreadscan/types"
)

// Engine runs one scan per call. Safe for concurrent use: scans share only
// the provider and the immutable policy config.
type Engine struct {
	provider marketdata.Provider
	cfg      config.EngineConfig

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// New creates an engine with the given collaborator and policy.
func New(provider marketdata.Provider, cfg config.EngineConfig) *Engine {
	return &Engine{provider: provider, cfg: cfg, now: time.Now}
}

// FindCreditSpread runs the generic multi-strike trend scanner: nearest
// qualifying expiration, trend-safe strike band, furthest-first candidate
// evaluation under a quote budget, weighted safety ranking.
func (e *Engine) FindCreditSpread(ctx context.Context, symbol string, trend types.Trend) (*ScanResult, error) {
	price, err := e.provider.GetUnderlyingPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	contracts, err := e.provider.GetContracts(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return notFound(symbol, ErrNoContracts.Error(), 0), nil
	}

	expiration, expContracts, err := selectExpiration(contracts, e.cfg.MinDTE, e.now())
	if err != nil {
		return notFound(symbol, err.Error(), 0), nil
	}

	optType := trend.OptionSide()
	sided, err := filterByType(expContracts, optType)
	if err != nil {
		return notFound(symbol, err.Error(), 0), nil
	}

	universe, err := filterStrikes(sided, price, trend)
	if err != nil {
		if calcErr, ok := err.(*CalculationError); ok {
			return nil, calcErr
		}
		return notFound(symbol, err.Error(), 0), nil
	}

	cache := newQuoteCache(e.provider)
	pairs := buildPairings(universe, price, trend)

	valid, tally, err := evaluatePairs(ctx, cache, pairs, price, e.cfg, true)
	if err != nil {
		return nil, err
	}

	best := selectBest(valid, price, trend)
	if best == nil {
		reason := tally.dominant()
		log.Info().
			Str("symbol", symbol).
			Str("trend", string(trend)).
			Str("reason", reason).
			Int("pairs", len(pairs)).
			Int64("quote_calls", cache.externalCalls()).
			Msg("No qualifying spread")
		return notFound(symbol, reason, cache.externalCalls()), nil
	}

	result := &ScanResult{
		Found:           true,
		Symbol:          symbol,
		SpreadType:      spreadTypeFor(trend),
		Expiration:      formatExpiration(expiration),
		DTE:             best.ShortLeg.DTE(e.now()),
		ShortStrike:     best.ShortLeg.Strike,
		BuyStrike:       best.LongLeg.Strike,
		ShortContractID: best.ShortLeg.Ticker,
		BuyContractID:   best.LongLeg.Ticker,
		NetCredit:       best.NetCredit,
		MaxRisk:         best.MaxRisk,
		MaxProfit:       best.MaxProfit,
		ROIPercent:      best.ROIPercent,
		Breakeven:       best.Breakeven,
		SafetyMarginPct: best.SafetyMarginPct,
		SafetyNote:      best.SafetyNote,
		Scenarios:       projectScenarios(&best.SpreadCandidate, price),
		RiskNote:        riskNote(trend, optType, &best.SpreadCandidate),
		QuoteCalls:      cache.externalCalls(),
	}

	log.Info().
		Str("symbol", symbol).
		Str("trend", string(trend)).
		Str("short", best.ShortLeg.Ticker).
		Str("long", best.LongLeg.Ticker).
		Str("credit", best.NetCredit.StringFixed(2)).
		Str("roi", best.ROIPercent.StringFixed(1)).
		Int("valid", len(valid)).
		Int64("quote_calls", cache.externalCalls()).
		Msg("✅ Credit spread selected")

	return result, nil
}

func spreadTypeFor(trend types.Trend) SpreadType {
	if trend == types.TrendDown {
		return SpreadBearCall
	}
	return SpreadBullPut
}
