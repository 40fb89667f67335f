package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/quantbird/spreadscan/internal/marketdata"
	"github.com/quantbird/spreadscan/types"
)

// quoteCache memoizes contract quotes for the lifetime of exactly one scan.
// It is created per scan invocation and discarded with it: quotes are
// time-sensitive, and sharing them across requests would leak stale data.
// Negative results are memoized too so a dead contract costs one call, not
// one per candidate pair it appears in.
type quoteCache struct {
	provider marketdata.Provider

	mu     sync.Mutex
	quotes map[string]*types.Quote // nil value = fetched, no usable quote

	calls atomic.Int64
}

func newQuoteCache(provider marketdata.Provider) *quoteCache {
	return &quoteCache{
		provider: provider,
		quotes:   make(map[string]*types.Quote),
	}
}

// get returns the cached quote for a ticker. Only meaningful after the
// ticker was part of a fetchBatch call; unknown tickers read as unusable.
func (qc *quoteCache) get(ticker string) *types.Quote {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.quotes[ticker]
}

// fetchBatch resolves quotes for all tickers not yet in the cache, issuing
// the misses concurrently and joining before returning. A failed or missing
// quote marks only that ticker unusable; it never aborts the batch.
func (qc *quoteCache) fetchBatch(ctx context.Context, tickers []string) {
	qc.mu.Lock()
	var misses []string
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		if _, done := qc.quotes[t]; done || seen[t] {
			continue
		}
		seen[t] = true
		misses = append(misses, t)
	}
	qc.mu.Unlock()

	if len(misses) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, ticker := range misses {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			qc.calls.Add(1)
			quote, err := qc.provider.GetQuote(ctx, ticker)
			if err != nil {
				log.Debug().Err(err).Str("ticker", ticker).Msg("Quote fetch failed, contract unusable")
				quote = nil
			}

			qc.mu.Lock()
			qc.quotes[ticker] = quote
			qc.mu.Unlock()
		}(ticker)
	}
	wg.Wait()
}

// externalCalls reports how many vendor round trips this scan issued.
func (qc *quoteCache) externalCalls() int64 {
	return qc.calls.Load()
}
