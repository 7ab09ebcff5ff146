// Package calendar implements the business-calendar arithmetic behind the
// delinquency derivations: federal-holiday generation, business-day and
// weekly-recurrence counting, and business-minute back-dating.
//
// All functions are pure functions of their date arguments; the holiday
// calendar is passed in as a lookup, never read from process state.
package calendar

import "time"

// HolidaySet is a date-keyed lookup of non-working days. Keys are dates
// truncated to midnight UTC.
type HolidaySet map[time.Time]struct{}

// Contains reports whether the date portion of t is a holiday.
func (h HolidaySet) Contains(t time.Time) bool {
	_, ok := h[DateOf(t)]
	return ok
}

// DateOf truncates a timestamp to its date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FederalHolidays returns the US federal holidays from January 1 of baseYear
// through end, inclusive. Fixed-date holidays falling on a weekend are
// observed on the nearest weekday (Saturday -> Friday, Sunday -> Monday).
// Juneteenth is included from 2021, the year of its enactment.
func FederalHolidays(baseYear int, end time.Time) HolidaySet {
	set := make(HolidaySet)
	endDate := DateOf(end)
	for year := baseYear; year <= endDate.Year()+1; year++ {
		for _, d := range holidaysForYear(year) {
			if !d.After(endDate) && d.Year() >= baseYear {
				set[d] = struct{}{}
			}
		}
	}
	return set
}

func holidaysForYear(year int) []time.Time {
	hs := []time.Time{
		nearestWorkday(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.January, time.Monday, 3),   // Martin Luther King Jr. Day
		nthWeekday(year, time.February, time.Monday, 3),  // Washington's Birthday
		lastWeekday(year, time.May, time.Monday),         // Memorial Day
		nearestWorkday(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.September, time.Monday, 1), // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),   // Columbus Day
		nearestWorkday(time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		nearestWorkday(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}
	if year >= 2021 {
		hs = append(hs, nearestWorkday(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	}
	return hs
}

func nearestWorkday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
