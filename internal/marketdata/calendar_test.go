package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextTradingDay_SkipsWeekend(t *testing.T) {
	// Friday June 6 2025 rolls over the weekend to Monday.
	got := NextTradingDay(date(2025, time.June, 6))
	assert.Equal(t, date(2025, time.June, 9), got)
}

func TestNextTradingDay_MidWeek(t *testing.T) {
	got := NextTradingDay(date(2025, time.June, 3))
	assert.Equal(t, date(2025, time.June, 4), got)
}

func TestNextTradingDay_SkipsIndependenceDay(t *testing.T) {
	// July 4 2025 is a Friday, so Thursday jumps to the following Monday.
	got := NextTradingDay(date(2025, time.July, 3))
	assert.Equal(t, date(2025, time.July, 7), got)
}

func TestNextTradingDay_SkipsChristmas(t *testing.T) {
	got := NextTradingDay(date(2025, time.December, 24))
	assert.Equal(t, date(2025, time.December, 26), got)
}

func TestNextTradingDay_SkipsThanksgiving(t *testing.T) {
	// Thanksgiving 2025 falls on Thursday Nov 27; Friday is a trading day.
	got := NextTradingDay(date(2025, time.November, 26))
	assert.Equal(t, date(2025, time.November, 28), got)
}

func TestNextTradingDay_SkipsMLKMonday(t *testing.T) {
	// Jan 19 2026 is the third Monday of January.
	got := NextTradingDay(date(2026, time.January, 16))
	assert.Equal(t, date(2026, time.January, 20), got)
}

func TestIsMarketHoliday_FloatingDates(t *testing.T) {
	// Labor Day, Memorial Day and Juneteenth 2025.
	assert.True(t, isMarketHoliday(date(2025, time.September, 1)))
	assert.True(t, isMarketHoliday(date(2025, time.May, 26)))
	assert.True(t, isMarketHoliday(date(2025, time.June, 19)))

	// A plain Monday one week after Labor Day.
	assert.False(t, isMarketHoliday(date(2025, time.September, 8)))
}
