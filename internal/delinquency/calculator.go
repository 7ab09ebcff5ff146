// Package delinquency derives the per-loan delinquency state: elapsed time,
// expected amount, delinquency amount, calendar days behind and remaining
// term. Each derivation consumes only previously derived fields of the same
// loan plus fixed configuration; NaN is the explicit "undefined" value and
// propagates through every division by a zero scheduled payment.
package delinquency

import (
	"math"
	"time"

	"github.com/lendline/delinq/internal/calendar"
	"github.com/lendline/delinq/internal/model"
)

const (
	minutesPerDay = 24 * 60

	// avgMonthDays is the mean Gregorian month length used for the
	// elapsed-term subtraction.
	avgMonthDays = 30.436875

	// nearZeroPayments is the payments-delinquent threshold below which
	// calendar days behind is forced to zero.
	nearZeroPayments = 0.001
)

// Metrics is the delinquency state derived for one loan. Float fields use
// NaN for undefined / not-applicable; aggregate consumers must skip NaN,
// never coerce it to zero.
type Metrics struct {
	DaysPassed         float64 // NaN for weekly-schedule loans
	WeeksPassed        float64 // NaN for daily-schedule loans
	ExpectedAmt        float64
	AmtDelinquent      float64
	PaymentsDelinquent float64
	MinutesBehind      int
	CalDays            float64
	RemainingTerm      float64
	PaymentsExpected   float64
	PaymentsPaid       float64
}

// Calculator holds the fixed configuration for the derivation chain.
type Calculator struct {
	Holidays  calendar.HolidaySet
	Backdater calendar.Backdater
	Overrides Table

	// InceptionCutoff is the program-inception date; payment starts before
	// it are treated as data errors and force elapsed time to zero.
	InceptionCutoff time.Time
}

// NewCalculator returns a Calculator with the default override table, the
// minute-stepping backdater over the given holiday set and the standard
// 2011-01-01 inception cutoff.
func NewCalculator(holidays calendar.HolidaySet) *Calculator {
	return &Calculator{
		Holidays:        holidays,
		Backdater:       calendar.MinuteStepper{Holidays: holidays},
		Overrides:       DefaultOverrides(),
		InceptionCutoff: time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Compute runs the full derivation chain for one loan state.
func (c *Calculator) Compute(s model.LoanState, analysisDate time.Time) Metrics {
	var m Metrics

	m.DaysPassed, m.WeeksPassed = c.elapsed(s, analysisDate)

	owed := s.AmtOwedAdj.InexactFloat64()
	paid := s.AmtPaidToDate.InexactFloat64()
	payment := s.DailyPayment.InexactFloat64()

	m.ExpectedAmt = c.expectedAmt(s, m.DaysPassed, m.WeeksPassed, analysisDate)
	m.AmtDelinquent = delinquentAmt(m.ExpectedAmt, owed, paid)
	m.PaymentsDelinquent = m.AmtDelinquent / payment

	m.CalDays, m.MinutesBehind = c.calendarDays(m.PaymentsDelinquent, analysisDate)
	m.CalDays = cleanCalendarDays(m.CalDays, m.PaymentsDelinquent, m.MinutesBehind, analysisDate)

	m.RemainingTerm = remainingTerm(s.Term, s.LoanDate, owed, paid, payment, analysisDate)

	m.PaymentsExpected = m.DaysPassed
	if math.IsNaN(m.PaymentsExpected) {
		m.PaymentsExpected = m.WeeksPassed
	}
	if s.Schedule == model.ScheduleWeekly {
		m.PaymentsPaid = paid / (payment * 5)
	} else {
		m.PaymentsPaid = paid / payment
	}

	return m.cleaned()
}

// elapsed returns business days passed (daily schedule) or weeks passed
// (weekly schedule) since payment start; the inapplicable measure is NaN.
// Both are forced to zero when the start is after the analysis date,
// predates the inception cutoff, or no bank-transaction start date exists.
func (c *Calculator) elapsed(s model.LoanState, analysisDate time.Time) (days, weeks float64) {
	if s.PaymentStart == nil {
		return 0, 0
	}
	start := *s.PaymentStart

	if s.Schedule == model.ScheduleWeekly {
		days = math.NaN()
		weeks = float64(calendar.WeeksBetween(start, analysisDate))
	} else {
		days = float64(calendar.BusinessDays(start, analysisDate, c.Holidays))
		weeks = math.NaN()
	}

	if start.After(analysisDate) || start.Before(c.InceptionCutoff) || s.FirstBankDate == nil {
		return 0, 0
	}
	return days, weeks
}

// expectedAmt is the schedule-dependent expected payment total, with
// per-loan overrides applied and the result clamped to the adjusted amount
// owed. A zero scheduled payment yields NaN. The clamp applies after the
// overrides.
func (c *Calculator) expectedAmt(s model.LoanState, days, weeks float64, analysisDate time.Time) float64 {
	payment := s.DailyPayment.InexactFloat64()

	var expected float64
	switch {
	case payment == 0:
		expected = math.NaN()
	case s.Schedule == model.ScheduleWeekly:
		expected = payment * 5 * weeks
	default:
		expected = payment * days
	}

	if ov, ok := c.Overrides[s.LoanID]; ok {
		expected = ov.ExpectedAmt(days, analysisDate)
	}

	if owed := s.AmtOwedAdj.InexactFloat64(); expected > owed {
		expected = owed
	}
	return expected
}

// delinquentAmt floors min(expected, owed) - paid at zero. An undefined
// expected amount falls through to the owed-based branch, preserving the
// comparison semantics of the historical implementation.
func delinquentAmt(expected, owed, paid float64) float64 {
	var d float64
	if expected <= owed {
		d = expected - paid
	} else {
		d = owed - paid
	}
	if d < 0 {
		return 0
	}
	return d
}

// calendarDays back-dates the delinquency as business minutes and returns
// the real-valued calendar-day difference. An infinite payments-delinquent
// collapses to exactly one minute; an undefined one stays undefined.
func (c *Calculator) calendarDays(paymentsDelinquent float64, analysisDate time.Time) (float64, int) {
	m := math.Round(paymentsDelinquent * minutesPerDay)
	if math.IsInf(m, 1) {
		m = 1
	}
	if math.IsNaN(m) {
		return math.NaN(), 0
	}
	minutes := int(m)
	behind := c.Backdater.Subtract(minutes, analysisDate)
	return analysisDate.Sub(behind).Minutes() / minutesPerDay, minutes
}

// cleanCalendarDays applies the post-back-dating corrections, in order:
// delinquency fully inside the current Monday-anchored week collapses to
// the payments-delinquent value, near-zero delinquency collapses to zero,
// and the one-minute guard value is reported as undefined.
func cleanCalendarDays(calDays, paymentsDelinquent float64, minutesBehind int, analysisDate time.Time) float64 {
	if paymentsDelinquent <= calendar.DaysIntoWeek(analysisDate) {
		calDays = paymentsDelinquent
	}
	if paymentsDelinquent < nearZeroPayments {
		calDays = 0
	}
	if minutesBehind == 1 {
		calDays = math.NaN()
	}
	return calDays
}

// remainingTerm subtracts the elapsed term in average-length months from
// the stated term. When that goes negative the loan has outrun its stated
// term and the remainder is estimated from payments left instead, converted
// from a 5-payment week to calendar days above a 5-payment threshold and
// divided by 30 to approximate months.
func remainingTerm(term float64, loanDate time.Time, owed, paid, payment float64, analysisDate time.Time) float64 {
	termDiff := analysisDate.Sub(loanDate).Hours() / 24 / avgMonthDays

	left := (owed - paid) / payment
	if left >= 5 {
		left = math.Floor(left/5)*7 + math.Mod(left, 5)
	}
	negMonths := left / 30

	if term-termDiff < 0 {
		return negMonths
	}
	return term - termDiff
}

// cleaned maps infinities to NaN in the four ratio fields that reach the
// report, so the sink can persist them as true nulls.
func (m Metrics) cleaned() Metrics {
	for _, f := range []*float64{&m.CalDays, &m.PaymentsDelinquent, &m.PaymentsExpected, &m.PaymentsPaid} {
		if math.IsInf(*f, 0) {
			*f = math.NaN()
		}
	}
	return m
}
