package calendar

import "time"

// Backdater converts a business-minute count into a real timestamp by
// stepping backwards through the working calendar. Implementations define
// the stepping strategy.
type Backdater interface {
	Subtract(minutes int, from time.Time) time.Time
}

// MinuteStepper is the reference Backdater. It walks backward one minute at
// a time, skipping Saturdays, Sundays and holiday dates, and decrements the
// counter only on minutes that land inside a working day.
type MinuteStepper struct {
	Holidays HolidaySet
}

// Subtract returns the timestamp reached after stepping back the given
// number of business minutes from `from`.
func (m MinuteStepper) Subtract(minutes int, from time.Time) time.Time {
	current := from
	for remaining := minutes; remaining > 0; {
		current = current.Add(-time.Minute)
		wd := current.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if m.Holidays.Contains(current) {
			continue
		}
		remaining--
	}
	return current
}
