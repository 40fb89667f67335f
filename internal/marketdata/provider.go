// Package marketdata talks to the external option-data vendor. All network
// resiliency (rate limiting, retries, circuit breaking) lives here so the
// selection engine stays deterministic and side-effect free.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/types"
)

// Provider is the engine's window onto the outside world. Implementations
// must be safe for concurrent use: quote fetches inside an evaluation batch
// are issued in parallel.
type Provider interface {
	// GetContracts returns the option contracts listed for an underlying.
	// A non-nil expiration restricts the listing to that date.
	GetContracts(ctx context.Context, underlying string, expiration *time.Time) ([]types.OptionContract, error)

	// GetQuote returns the latest quote for a contract ticker. A missing
	// quote is (nil, nil): the contract is unusable but the scan goes on.
	GetQuote(ctx context.Context, ticker string) (*types.Quote, error)

	// GetUnderlyingPrice returns the last trade price for a stock symbol.
	GetUnderlyingPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// NextTradingDayExpiration returns the next trading-day expiration for
	// symbols with daily listings. Used by the fixed-window scanner.
	NextTradingDayExpiration(ctx context.Context, symbol string) (time.Time, error)
}

// ErrExternalAPI marks faults that survived the client's own retries.
// Callers classify it into a transport-level status; it never means
// "nothing qualified".
var ErrExternalAPI = errors.New("market data API error")

// APIError carries the failing endpoint and status for logging.
type APIError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("market data API: %s returned %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("market data API: %s: %v", e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrExternalAPI
}

// Is lets errors.Is(err, ErrExternalAPI) match every APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrExternalAPI
}
