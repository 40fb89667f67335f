package engine

import (
	"errors"
	"fmt"
)

// Pipeline errors. These describe why a scan produced nothing; the engine
// translates them into a structured found:false result so callers can show
// the reason to an end user. Genuine faults (ErrExternalAPI, calculation
// errors) propagate as errors instead.
var (
	ErrNoContracts         = errors.New("no option contracts available")
	ErrNoValidExpiration   = errors.New("no expiration meets the minimum DTE")
	ErrNoContractsForType  = errors.New("no contracts for the required option type")
	ErrInsufficientStrikes = errors.New("fewer than two strikes in the tradeable band")
)

// Rejection reasons surfaced when candidates were generated but none
// qualified. The dominant reason across all rejected pairs is reported.
const (
	ReasonROIOutOfBand  = "ROI out of target band"
	ReasonQuotesMissing = "quotes missing"
	ReasonSpreadTooWide = "spread too wide"
	ReasonBidAskTooWide = "bid-ask too wide"
	ReasonNoCredit      = "no positive credit available"
	ReasonCostTooHigh   = "entry cost above threshold"
	ReasonNoQualifying  = "no qualifying spread"
)

// CalculationError reports malformed numeric input that makes spread
// economics meaningless (e.g. a non-positive underlying price).
type CalculationError struct {
	Field string
	Msg   string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation error: %s: %s", e.Field, e.Msg)
}
