package delinquency

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lendline/delinq/internal/calendar"
	"github.com/lendline/delinq/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func state(schedule model.PaymentSchedule, start time.Time) model.LoanState {
	s := model.LoanState{Loan: model.Loan{Schedule: schedule}}
	s.FirstBankDate = &start
	s.PaymentStart = &start
	return s
}

func TestElapsed_BusinessDaysAndWeeks(t *testing.T) {
	analysis := date(2019, time.December, 31)
	c := NewCalculator(calendar.FederalHolidays(2009, analysis))

	daily1 := state(model.ScheduleDaily, date(2019, time.December, 19))
	daily2 := state(model.ScheduleDaily, date(2019, time.December, 20))
	weekly := state(model.ScheduleWeekly, date(2019, time.December, 15))

	d1, w1 := c.elapsed(daily1, analysis)
	d2, w2 := c.elapsed(daily2, analysis)
	d3, w3 := c.elapsed(weekly, analysis)

	assert.InDelta(t, 8, d1, 1e-9, "Christmas excluded")
	assert.InDelta(t, 7, d2, 1e-9)
	assert.True(t, math.IsNaN(d3), "days not applicable for weekly loans")
	assert.InDelta(t, 15, d1+d2, 1e-9)

	assert.True(t, math.IsNaN(w1))
	assert.True(t, math.IsNaN(w2))
	assert.InDelta(t, 3, w3, 1e-9)
}

func TestElapsed_ZeroingGuards(t *testing.T) {
	analysis := date(2020, time.January, 31)
	c := NewCalculator(nil)

	tests := []struct {
		name  string
		state model.LoanState
	}{
		{"start after analysis date", state(model.ScheduleDaily, date(2020, time.February, 13))},
		{"start before inception cutoff", state(model.ScheduleDaily, date(2008, time.February, 13))},
		{"weekly start after analysis date", state(model.ScheduleWeekly, date(2020, time.February, 13))},
		{"weekly start before inception cutoff", state(model.ScheduleWeekly, date(2008, time.February, 13))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, w := c.elapsed(tt.state, analysis)
			assert.Zero(t, d)
			assert.Zero(t, w)
		})
	}

	t.Run("no bank transaction date", func(t *testing.T) {
		s := state(model.ScheduleDaily, date(2020, time.January, 21))
		s.FirstBankDate = nil
		d, w := c.elapsed(s, analysis)
		assert.Zero(t, d)
		assert.Zero(t, w)
	})

	t.Run("no payment start at all", func(t *testing.T) {
		var s model.LoanState
		s.Schedule = model.ScheduleDaily
		d, w := c.elapsed(s, analysis)
		assert.Zero(t, d)
		assert.Zero(t, w)
	})

	t.Run("valid start stays counted", func(t *testing.T) {
		d, _ := c.elapsed(state(model.ScheduleDaily, date(2020, time.January, 21)), analysis)
		assert.InDelta(t, 9, d, 1e-9)
	})
}

func TestExpectedAmt(t *testing.T) {
	analysis := date(2020, time.June, 1)
	c := NewCalculator(nil)

	mk := func(payment string, schedule model.PaymentSchedule) model.LoanState {
		var s model.LoanState
		s.DailyPayment = dec(payment)
		s.Schedule = schedule
		s.AmtOwedAdj = dec("1000000")
		return s
	}

	zero := c.expectedAmt(mk("0", model.ScheduleDaily), 10, 2, analysis)
	weekly := c.expectedAmt(mk("100", model.ScheduleWeekly), 20, 3, analysis)
	daily := c.expectedAmt(mk("200", model.ScheduleDaily), 10, 2, analysis)

	assert.True(t, math.IsNaN(zero), "zero scheduled payment is undefined")
	assert.InDelta(t, 1500, weekly, 1e-9)
	assert.InDelta(t, 2000, daily, 1e-9)
	assert.InDelta(t, 3500, weekly+daily, 1e-9)
}

func TestExpectedAmt_ClampedToOwed(t *testing.T) {
	analysis := date(2020, time.June, 1)
	c := NewCalculator(nil)

	tests := []struct {
		payment string
		days    float64
		owed    string
		want    float64
	}{
		{"100", 10, "500", 500}, // 1000 clamped
		{"100", 20, "5000", 2000},
		{"100", 30, "8000", 3000},
		{"100", 40, "9000", 4000},
	}
	for _, tt := range tests {
		var s model.LoanState
		s.DailyPayment = dec(tt.payment)
		s.Schedule = model.ScheduleDaily
		s.AmtOwedAdj = dec(tt.owed)
		assert.InDelta(t, tt.want, c.expectedAmt(s, tt.days, math.NaN(), analysis), 1e-9)
	}
}

func TestExpectedAmt_Overrides(t *testing.T) {
	c := NewCalculator(nil)
	unclamped := dec("100000000")

	t.Run("weekly accrual", func(t *testing.T) {
		var s model.LoanState
		s.LoanID = 27
		s.DailyPayment = dec("100")
		s.Schedule = model.ScheduleWeekly
		s.AmtOwedAdj = unclamped
		// 2020-07-15 .. 2020-08-14 is 30 days: 5 recurrence points.
		got := c.expectedAmt(s, math.NaN(), 3, date(2020, time.August, 14))
		assert.InDelta(t, 50600+4500*5, got, 1e-9)
	})

	t.Run("two rate", func(t *testing.T) {
		var s model.LoanState
		s.LoanID = 99
		s.DailyPayment = dec("100")
		s.Schedule = model.ScheduleDaily
		s.AmtOwedAdj = unclamped
		got := c.expectedAmt(s, 60, math.NaN(), date(2020, time.August, 14))
		assert.InDelta(t, 55*213+5*700, got, 1e-9)
	})

	t.Run("piecewise two rate below pivot", func(t *testing.T) {
		var s model.LoanState
		s.LoanID = 56
		s.DailyPayment = dec("100")
		s.Schedule = model.ScheduleDaily
		s.AmtOwedAdj = unclamped
		got := c.expectedAmt(s, 20, math.NaN(), date(2020, time.August, 14))
		assert.InDelta(t, 20*200, got, 1e-9)
	})

	t.Run("piecewise two rate above pivot", func(t *testing.T) {
		var s model.LoanState
		s.LoanID = 56
		s.DailyPayment = dec("100")
		s.Schedule = model.ScheduleDaily
		s.AmtOwedAdj = unclamped
		got := c.expectedAmt(s, 126, math.NaN(), date(2020, time.August, 14))
		assert.InDelta(t, 103*200+23*500, got, 1e-9)
	})

	t.Run("override stays subject to the clamp", func(t *testing.T) {
		var s model.LoanState
		s.LoanID = 56
		s.DailyPayment = dec("100")
		s.Schedule = model.ScheduleDaily
		s.AmtOwedAdj = dec("1000")
		got := c.expectedAmt(s, 126, math.NaN(), date(2020, time.August, 14))
		assert.InDelta(t, 1000, got, 1e-9)
	})
}

func TestDelinquentAmt(t *testing.T) {
	tests := []struct {
		name                 string
		expected, owed, paid float64
		want                 float64
	}{
		{"expected above owed", 20, 10, 5, 5},
		{"expected below owed", 30, 40, 10, 20},
		{"overpaid floors at zero", 40, 50, 70, 0},
		{"plain shortfall", 50, 60, 10, 40},
	}
	total := 0.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := delinquentAmt(tt.expected, tt.owed, tt.paid)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			total += got
		})
	}
	assert.InDelta(t, 65, total, 1e-9)

	t.Run("undefined expected falls back to owed", func(t *testing.T) {
		got := delinquentAmt(math.NaN(), 100, 30)
		assert.InDelta(t, 70, got, 1e-9)
	})
}

func TestCalendarDays(t *testing.T) {
	c := NewCalculator(nil) // empty holiday set keeps the fixture arithmetic plain
	analysis := date(2020, time.January, 21)

	t.Run("three payments behind crosses a weekend", func(t *testing.T) {
		got, minutes := c.calendarDays(3, analysis)
		assert.Equal(t, 4320, minutes)
		assert.InDelta(t, 5, got, 1e-9)
	})

	t.Run("zero behind", func(t *testing.T) {
		got, minutes := c.calendarDays(0, analysis)
		assert.Zero(t, minutes)
		assert.InDelta(t, 0, got, 1e-9)
	})

	t.Run("infinite collapses to one minute", func(t *testing.T) {
		_, minutes := c.calendarDays(math.Inf(1), analysis)
		assert.Equal(t, 1, minutes)
	})

	t.Run("undefined stays undefined", func(t *testing.T) {
		got, minutes := c.calendarDays(math.NaN(), analysis)
		assert.True(t, math.IsNaN(got))
		assert.Zero(t, minutes)
	})

	t.Run("holidays are skipped", func(t *testing.T) {
		hc := NewCalculator(calendar.HolidaySet{date(2020, time.January, 20): {}})
		got, _ := hc.calendarDays(3, analysis) // MLK Monday directly behind the analysis date
		assert.InDelta(t, 6, got, 1e-9)
	})
}

func TestCleanCalendarDays(t *testing.T) {
	analysis := date(2020, time.May, 14) // a Thursday: 4 days into the week

	tests := []struct {
		name          string
		calDays       float64
		delinquent    float64
		minutesBehind int
		want          float64
	}{
		{"inside current week", 4, 3, 300, 3},
		{"outside current week", 18, 12, 400, 18},
		{"near zero forces zero", 1, 0.00001, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanCalendarDays(tt.calDays, tt.delinquent, tt.minutesBehind, analysis)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("one minute guard is undefined", func(t *testing.T) {
		got := cleanCalendarDays(7, 6, 1, analysis)
		assert.True(t, math.IsNaN(got))
	})
}

func TestRemainingTerm(t *testing.T) {
	analysis := date(2020, time.January, 31)

	tests := []struct {
		name       string
		term       float64
		loanDate   time.Time
		owed, paid float64
		payment    float64
		want       float64
	}{
		{"positive subtraction", 2, date(2020, time.January, 1), 100, 60, 20, 1.0144},
		{"still within stated term", 4, date(2019, time.December, 1), 200, 20, 30, 1.9959},
		{"negative falls back to payments left", 1, date(2019, time.November, 1), 300, 30, 40, 0.2917},
	}
	total := 0.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remainingTerm(tt.term, tt.loanDate, tt.owed, tt.paid, tt.payment, analysis)
			assert.InDelta(t, tt.want, got, 0.001)
			total += got
		})
	}
	assert.InDelta(t, 3, total, 0.5)
}

func TestCompute_PaymentInfo(t *testing.T) {
	analysis := date(2020, time.January, 31)
	c := NewCalculator(nil)

	daily := state(model.ScheduleDaily, date(2020, time.January, 21))
	daily.DailyPayment = dec("10")
	daily.AmtOwedAdj = dec("1000")
	daily.AmtPaidToDate = dec("100")
	daily.HasPaid = true

	m := c.Compute(daily, analysis)
	assert.InDelta(t, 9, m.DaysPassed, 1e-9)
	assert.InDelta(t, 9, m.PaymentsExpected, 1e-9, "daily loans report days")
	assert.InDelta(t, 10, m.PaymentsPaid, 1e-9)

	weekly := state(model.ScheduleWeekly, date(2020, time.January, 3))
	weekly.DailyPayment = dec("20")
	weekly.AmtOwedAdj = dec("1000")
	weekly.AmtPaidToDate = dec("200")
	weekly.HasPaid = true

	m = c.Compute(weekly, analysis)
	assert.InDelta(t, 5, m.WeeksPassed, 1e-9)
	assert.InDelta(t, 5, m.PaymentsExpected, 1e-9, "weekly loans report weeks")
	assert.InDelta(t, 2, m.PaymentsPaid, 1e-9, "paid over a five payment week")
}

func TestCompute_EndToEnd(t *testing.T) {
	// Daily loan, 9 business days elapsed, expected 900, paid 400:
	// 500 delinquent over a 100 payment = 5 payments behind.
	analysis := date(2020, time.January, 31) // a Friday: 5 days into the week
	c := NewCalculator(nil)

	s := state(model.ScheduleDaily, date(2020, time.January, 21))
	s.LoanID = 12
	s.LoanDate = date(2020, time.January, 2)
	s.Term = 6
	s.DailyPayment = dec("100")
	s.AmtOwedAdj = dec("10000")
	s.AmtPaidToDate = dec("400")
	s.HasPaid = true
	s.LoanBalance = dec("9600")

	m := c.Compute(s, analysis)

	assert.InDelta(t, 9, m.DaysPassed, 1e-9)
	assert.True(t, math.IsNaN(m.WeeksPassed))
	assert.InDelta(t, 900, m.ExpectedAmt, 1e-9)
	assert.InDelta(t, 500, m.AmtDelinquent, 1e-9)
	assert.InDelta(t, 5, m.PaymentsDelinquent, 1e-9)
	// 5 payments behind equals the 5 days elapsed this week, so calendar
	// days collapse to the delinquent-payments value.
	assert.InDelta(t, 5, m.CalDays, 1e-9)
	assert.InDelta(t, 9, m.PaymentsExpected, 1e-9)
	assert.InDelta(t, 4, m.PaymentsPaid, 1e-9)
	assert.InDelta(t, 6-0.9529, m.RemainingTerm, 0.001)
}

func TestMetricsCleaned(t *testing.T) {
	m := Metrics{
		CalDays:            math.Inf(1),
		PaymentsDelinquent: math.Inf(1),
		PaymentsExpected:   math.Inf(1),
		PaymentsPaid:       math.Inf(1),
		ExpectedAmt:        42,
	}
	got := m.cleaned()
	assert.True(t, math.IsNaN(got.CalDays))
	assert.True(t, math.IsNaN(got.PaymentsDelinquent))
	assert.True(t, math.IsNaN(got.PaymentsExpected))
	assert.True(t, math.IsNaN(got.PaymentsPaid))
	assert.InDelta(t, 42, got.ExpectedAmt, 1e-9)
}
