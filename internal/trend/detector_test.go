package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbird/spreadscan/types"
)

type fakeSource struct {
	prices map[string][]float64
}

func (f *fakeSource) Prices(symbol string) []float64 { return f.prices[symbol] }

func rising(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func falling(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start - float64(i)*step
	}
	return out
}

func TestDetect_Uptrend(t *testing.T) {
	// A steady climb keeps the fast average above the slow one. Periodic
	// pullbacks register losses so RSI stays below the overheat guard.
	prices := rising(60, 100, 0.5)
	for i := 1; i < len(prices); i += 4 {
		prices[i] -= 2.0
	}

	d := NewDetector(&fakeSource{prices: map[string][]float64{"NVDA": prices}})
	trend, err := d.Detect("NVDA")
	require.NoError(t, err)
	assert.Equal(t, types.TrendUp, trend)
}

func TestDetect_Downtrend(t *testing.T) {
	prices := falling(60, 200, 0.5)
	for i := 1; i < len(prices); i += 4 {
		prices[i] += 2.0
	}

	d := NewDetector(&fakeSource{prices: map[string][]float64{"NVDA": prices}})
	trend, err := d.Detect("NVDA")
	require.NoError(t, err)
	assert.Equal(t, types.TrendDown, trend)
}

func TestDetect_ShortHistoryUndecided(t *testing.T) {
	d := NewDetector(&fakeSource{prices: map[string][]float64{"NVDA": rising(20, 100, 1)}})
	_, err := d.Detect("NVDA")
	assert.ErrorIs(t, err, ErrUndecided)
}

func TestDetect_UnknownSymbolUndecided(t *testing.T) {
	d := NewDetector(&fakeSource{prices: map[string][]float64{}})
	_, err := d.Detect("AMD")
	assert.ErrorIs(t, err, ErrUndecided)
}

func TestDetect_OverheatedUptrendUndecided(t *testing.T) {
	// A monotonic climb pins RSI at 100, above the overheat guard.
	d := NewDetector(&fakeSource{prices: map[string][]float64{"NVDA": rising(60, 100, 1)}})
	_, err := d.Detect("NVDA")
	assert.ErrorIs(t, err, ErrUndecided)
}
