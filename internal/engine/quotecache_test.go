package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/types"
)

// countingProvider fails configured tickers and counts every fetch.
type countingProvider struct {
	mu      sync.Mutex
	quotes  map[string]*types.Quote
	failing map[string]bool
	fetches map[string]int
}

func (p *countingProvider) GetQuote(_ context.Context, ticker string) (*types.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetches == nil {
		p.fetches = make(map[string]int)
	}
	p.fetches[ticker]++
	if p.failing[ticker] {
		return nil, errors.New("boom")
	}
	return p.quotes[ticker], nil
}

func (p *countingProvider) GetContracts(context.Context, string, *time.Time) ([]types.OptionContract, error) {
	return nil, nil
}

func (p *countingProvider) GetUnderlyingPrice(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (p *countingProvider) NextTradingDayExpiration(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}

func TestQuoteCache_MemoizesAcrossBatches(t *testing.T) {
	p := &countingProvider{quotes: map[string]*types.Quote{
		"A": quote("1.00", "1.05"),
		"B": quote("2.00", "2.05"),
	}}
	cache := newQuoteCache(p)

	cache.fetchBatch(context.Background(), []string{"A", "B", "A"})
	require.NotNil(t, cache.get("A"))
	require.NotNil(t, cache.get("B"))
	assert.Equal(t, int64(2), cache.externalCalls())

	// Second batch re-requests A; only C is new.
	p.quotes["C"] = quote("3.00", "3.05")
	cache.fetchBatch(context.Background(), []string{"A", "C"})
	assert.Equal(t, int64(3), cache.externalCalls())
	assert.Equal(t, 1, p.fetches["A"])
	assert.Equal(t, 1, p.fetches["C"])
}

func TestQuoteCache_FailureMarksOnlyThatTicker(t *testing.T) {
	p := &countingProvider{
		quotes:  map[string]*types.Quote{"GOOD": quote("1.00", "1.05")},
		failing: map[string]bool{"BAD": true},
	}
	cache := newQuoteCache(p)

	cache.fetchBatch(context.Background(), []string{"GOOD", "BAD"})

	assert.True(t, cache.get("GOOD").Tradeable())
	assert.Nil(t, cache.get("BAD"))

	// The failure is memoized: no second round trip for BAD.
	cache.fetchBatch(context.Background(), []string{"BAD"})
	assert.Equal(t, 1, p.fetches["BAD"])
}

func TestQuoteCache_UnknownTickerReadsUnusable(t *testing.T) {
	cache := newQuoteCache(&countingProvider{})
	assert.Nil(t, cache.get("NEVER-FETCHED"))
	assert.False(t, cache.get("NEVER-FETCHED").Tradeable())
}
