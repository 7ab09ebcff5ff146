package calendar

import "time"

// BusinessDays counts business days (Monday-Friday, excluding holidays) from
// start through end inclusive. Returns 0 when end precedes start.
func BusinessDays(start, end time.Time, holidays HolidaySet) int {
	s := DateOf(start)
	e := DateOf(end)
	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		count++
	}
	return count
}

// WeeksBetween counts weekly recurrence points from start through end
// inclusive: the start date itself plus one for every full seven calendar
// days after it. Returns 0 when end precedes start.
func WeeksBetween(start, end time.Time) int {
	s := DateOf(start)
	e := DateOf(end)
	if e.Before(s) {
		return 0
	}
	days := int(e.Sub(s).Hours() / 24)
	return days/7 + 1
}

// BusinessDaysAgo steps back n weekdays from the date portion of t.
// Holidays are not considered; this mirrors the plain business-day offset
// used to derive the daily analysis date.
func BusinessDaysAgo(t time.Time, n int) time.Time {
	d := DateOf(t)
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, -1)
		if isWeekend(d) {
			continue
		}
		remaining--
	}
	return d
}

// DaysIntoWeek returns the number of calendar days elapsed in the week of t,
// anchored on Monday and inclusive of t itself (Monday = 1 ... Sunday = 7).
func DaysIntoWeek(t time.Time) float64 {
	weekday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return float64(weekday + 1)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
