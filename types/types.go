package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// OptionType is the contract right. Typed so switches over it are exhaustive
// instead of comparing raw strings from the API.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// Trend is the caller-supplied direction bias for a scan.
type Trend string

const (
	TrendUp   Trend = "uptrend"
	TrendDown Trend = "downtrend"
)

// OptionSide maps a trend to the option type the scanner trades:
// uptrend sells put spreads, downtrend sells call spreads.
func (t Trend) OptionSide() OptionType {
	if t == TrendDown {
		return OptionTypeCall
	}
	return OptionTypePut
}

// OptionContract identifies a single listed option. Immutable once fetched.
type OptionContract struct {
	Ticker     string          // e.g. "O:SPY251219P00450000"
	Underlying string          // e.g. "SPY"
	Strike     decimal.Decimal
	Type       OptionType
	Expiration time.Time // date only, exchange close implied
}

// DTE returns whole days until the contract expires, never negative.
func (c OptionContract) DTE(now time.Time) int {
	days := int(c.Expiration.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Quote is a point-in-time market snapshot for one contract. Transient; owned
// by the quote cache for the lifetime of a single scan.
type Quote struct {
	Bid          decimal.Decimal
	Ask          decimal.Decimal
	Last         decimal.Decimal
	Volume       int64
	OpenInterest int64
	ImpliedVol   *decimal.Decimal // optional, nil when the feed omits it
}

// Tradeable reports whether the quote has a live two-sided market.
func (q *Quote) Tradeable() bool {
	return q != nil && q.Bid.IsPositive() && q.Ask.IsPositive()
}

// BidAskSpread returns ask-bid, zero when the quote is missing.
func (q *Quote) BidAskSpread() decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return q.Ask.Sub(q.Bid)
}
