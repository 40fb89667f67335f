package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpreadType names the strategy shape of a selected spread.
type SpreadType string

const (
	SpreadBullPut      SpreadType = "bull_put_credit"
	SpreadBearCall     SpreadType = "bear_call_credit"
	SpreadITMCallDebit SpreadType = "itm_call_debit"
)

// ScanResult is the envelope returned to callers by both scanner variants.
// Found=false with a Reason is a normal outcome, not an error.
type ScanResult struct {
	Found  bool   `json:"found"`
	Reason string `json:"reason,omitempty"`

	Symbol     string     `json:"symbol"`
	SpreadType SpreadType `json:"spread_type,omitempty"`
	Expiration string     `json:"expiration,omitempty"` // YYYY-MM-DD
	DTE        int        `json:"dte,omitempty"`

	ShortStrike     decimal.Decimal `json:"short_strike,omitempty"`
	BuyStrike       decimal.Decimal `json:"buy_strike,omitempty"`
	ShortContractID string          `json:"short_contract_id,omitempty"`
	BuyContractID   string          `json:"buy_contract_id,omitempty"`

	NetCredit       decimal.Decimal `json:"net_credit,omitempty"`
	MaxRisk         decimal.Decimal `json:"max_risk,omitempty"`
	MaxProfit       decimal.Decimal `json:"max_profit,omitempty"`
	ROIPercent      decimal.Decimal `json:"roi_percent,omitempty"`
	Breakeven       decimal.Decimal `json:"breakeven,omitempty"`
	SafetyMarginPct decimal.Decimal `json:"safety_margin_pct,omitempty"`
	SafetyNote      string          `json:"safety_note,omitempty"` // "% below price" vs "% above price"

	Scenarios []ScenarioPoint `json:"scenarios,omitempty"`
	RiskNote  string          `json:"risk_note,omitempty"`

	// Observability: external quote calls issued during this scan.
	QuoteCalls int64 `json:"quote_calls"`
}

// ITMScanResult extends the shared envelope with the fixed-window variant's
// extras: the mid-style entry cost and per-contract display highlights.
type ITMScanResult struct {
	ScanResult

	EntryCost  decimal.Decimal      `json:"entry_cost,omitempty"`
	Highlights map[string]Highlight `json:"highlights,omitempty"` // contract ticker -> tag
}

// Highlight tags a contract in a displayed chain.
type Highlight string

const (
	HighlightBuy  Highlight = "buy"
	HighlightSell Highlight = "sell"
)

func notFound(symbol, reason string, quoteCalls int64) *ScanResult {
	return &ScanResult{Found: false, Reason: reason, Symbol: symbol, QuoteCalls: quoteCalls}
}

func formatExpiration(t time.Time) string {
	return t.Format("2006-01-02")
}
