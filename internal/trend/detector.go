// Package trend classifies a symbol's direction from streamed price history.
// The scan endpoints accept an explicit trend; this detector backs the
// auto-scan path where the caller doesn't supply one.
package trend

import (
	"errors"

	"github.com/quantbird/spreadscan/internal/indicators"
	"github.com/quantbird/spreadscan/types"
)

// ErrUndecided means the price history shows no usable direction bias.
var ErrUndecided = errors.New("no clear trend")

// PriceSource supplies recent prices for a symbol, newest last.
type PriceSource interface {
	Prices(symbol string) []float64
}

// Detector classifies trends from moving-average crossovers with an RSI
// guard against chasing exhausted moves.
type Detector struct {
	source      PriceSource
	fastPeriod  int
	slowPeriod  int
	rsiPeriod   int
	rsiOverheat float64
	rsiOversold float64
}

// NewDetector creates a detector with the given price source.
func NewDetector(source PriceSource) *Detector {
	return &Detector{
		source:      source,
		fastPeriod:  20,
		slowPeriod:  50,
		rsiPeriod:   14,
		rsiOverheat: 75,
		rsiOversold: 25,
	}
}

// Detect returns the current trend for a symbol or ErrUndecided.
func (d *Detector) Detect(symbol string) (types.Trend, error) {
	prices := d.source.Prices(symbol)
	if len(prices) < d.slowPeriod {
		return "", ErrUndecided
	}

	fast := indicators.EMA(prices, d.fastPeriod)
	slow := indicators.SMA(prices, d.slowPeriod)
	rsi := indicators.RSI(prices, d.rsiPeriod)

	switch {
	case fast > slow && rsi < d.rsiOverheat:
		return types.TrendUp, nil
	case fast < slow && rsi > d.rsiOversold:
		return types.TrendDown, nil
	default:
		return "", ErrUndecided
	}
}
