package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/quantbird/spreadscan/types"
)

const (
	maxRetries     = 3
	baseBackoff    = 250 * time.Millisecond
	maxBackoff     = 5 * time.Second
	requestTimeout = 10 * time.Second
)

// Client is a REST client for a Polygon-style options data API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a market data client with rate limiting and a circuit
// breaker in front of the vendor API.
func NewClient(baseURL, apiKey string, rps float64, burst int) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "marketdata",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("⚡ Market data circuit state changed")
			},
		}),
	}
}

// API payloads

type contractsResponse struct {
	Results []struct {
		Ticker           string          `json:"ticker"`
		UnderlyingTicker string          `json:"underlying_ticker"`
		StrikePrice      decimal.Decimal `json:"strike_price"`
		ContractType     string          `json:"contract_type"`
		ExpirationDate   string          `json:"expiration_date"`
	} `json:"results"`
	NextURL string `json:"next_url"`
}

type quoteResponse struct {
	Results *struct {
		Bid          decimal.Decimal  `json:"bid"`
		Ask          decimal.Decimal  `json:"ask"`
		Last         decimal.Decimal  `json:"last"`
		Volume       int64            `json:"volume"`
		OpenInterest int64            `json:"open_interest"`
		ImpliedVol   *decimal.Decimal `json:"implied_volatility,omitempty"`
	} `json:"results"`
}

type lastTradeResponse struct {
	Results struct {
		Price decimal.Decimal `json:"p"`
	} `json:"results"`
}

// GetContracts fetches the option chain for an underlying, following
// pagination until the vendor runs out of pages.
func (c *Client) GetContracts(ctx context.Context, underlying string, expiration *time.Time) ([]types.OptionContract, error) {
	params := url.Values{}
	params.Set("underlying_ticker", underlying)
	params.Set("limit", "1000")
	if expiration != nil {
		params.Set("expiration_date", expiration.Format("2006-01-02"))
	}

	endpoint := fmt.Sprintf("%s/v3/reference/options/contracts?%s", c.baseURL, params.Encode())

	var contracts []types.OptionContract
	for endpoint != "" {
		var resp contractsResponse
		if err := c.getJSON(ctx, "contracts", endpoint, &resp); err != nil {
			return nil, err
		}

		for _, r := range resp.Results {
			exp, err := time.Parse("2006-01-02", r.ExpirationDate)
			if err != nil {
				log.Debug().Str("ticker", r.Ticker).Str("expiration", r.ExpirationDate).Msg("Skipping contract with bad expiration")
				continue
			}
			contracts = append(contracts, types.OptionContract{
				Ticker:     r.Ticker,
				Underlying: r.UnderlyingTicker,
				Strike:     r.StrikePrice,
				Type:       types.OptionType(r.ContractType),
				Expiration: exp,
			})
		}
		endpoint = resp.NextURL
	}

	return contracts, nil
}

// GetQuote fetches the latest quote for one contract. A 404 from the vendor
// means "no market" and returns (nil, nil) rather than an error.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*types.Quote, error) {
	endpoint := fmt.Sprintf("%s/v3/quotes/%s/latest?", c.baseURL, url.PathEscape(ticker))

	var resp quoteResponse
	if err := c.getJSON(ctx, "quote", endpoint, &resp); err != nil {
		var apiErr *APIError
		if ok := errors.As(err, &apiErr); ok && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if resp.Results == nil {
		return nil, nil
	}

	return &types.Quote{
		Bid:          resp.Results.Bid,
		Ask:          resp.Results.Ask,
		Last:         resp.Results.Last,
		Volume:       resp.Results.Volume,
		OpenInterest: resp.Results.OpenInterest,
		ImpliedVol:   resp.Results.ImpliedVol,
	}, nil
}

// GetUnderlyingPrice fetches the last trade price for a stock symbol.
func (c *Client) GetUnderlyingPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v2/last/trade/%s?", c.baseURL, url.PathEscape(symbol))

	var resp lastTradeResponse
	if err := c.getJSON(ctx, "last_trade", endpoint, &resp); err != nil {
		return decimal.Zero, err
	}
	if !resp.Results.Price.IsPositive() {
		return decimal.Zero, &APIError{Endpoint: "last_trade", Err: fmt.Errorf("non-positive price for %s", symbol)}
	}
	return resp.Results.Price, nil
}

// NextTradingDayExpiration resolves the next trading-day expiration from the
// market calendar. Symbols with daily expirations list every trading day, so
// no vendor round trip is needed.
func (c *Client) NextTradingDayExpiration(_ context.Context, _ string) (time.Time, error) {
	return NextTradingDay(time.Now()), nil
}

// getJSON performs a GET with rate limiting, circuit breaking and bounded
// retries, decoding the body into out.
func (c *Client) getJSON(ctx context.Context, name, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt, lastErr)
			observeRetry(name)
			log.Debug().Str("endpoint", name).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying market data request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doOnce(ctx, name, endpoint, out)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, name, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"&apiKey="+url.QueryEscape(c.apiKey), nil)
	if err != nil {
		return &APIError{Endpoint: name, Err: err}
	}

	observeRequest(name)
	resp, err := c.http.Do(req)
	if err != nil {
		observeError(name)
		return &APIError{Endpoint: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observeError(name)
		apiErr := &APIError{Endpoint: name, Status: resp.StatusCode}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil {
				apiErr.Err = &retryAfterError{delay: time.Duration(secs) * time.Second}
			}
		}
		io.Copy(io.Discard, resp.Body)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		observeError(name)
		return &APIError{Endpoint: name, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// retryAfterError smuggles a server-supplied retry hint through the error chain.
type retryAfterError struct {
	delay time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("retry after %s", e.delay)
}

// retryDelay is exponential backoff with jitter, capped at maxBackoff.
// A server Retry-After hint overrides the computed delay.
func retryDelay(attempt int, lastErr error) time.Duration {
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		var ra *retryAfterError
		if apiErr.Err != nil {
			if e, ok := apiErr.Err.(*retryAfterError); ok {
				ra = e
			}
		}
		if ra != nil {
			return ra.delay
		}
	}

	delay := baseBackoff << uint(attempt-1)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	return delay/2 + jitter
}

// retryable reports whether another attempt could succeed. Client-side 4xx
// responses (other than 429) never become retries.
func retryable(err error) bool {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 0 || apiErr.Status == http.StatusTooManyRequests {
			return true
		}
		return apiErr.Status >= 500
	}
	return false
}

