package delinquency

import (
	"time"

	"github.com/lendline/delinq/internal/calendar"
)

// Override is a hand-specified expected-amount formula for a single
// anomalous loan, applied in place of the schedule-derived value. Overrides
// live in an explicit table keyed by loan id so the exception set stays
// auditable and testable independent of the general formula.
type Override interface {
	ExpectedAmt(daysPassed float64, analysisDate time.Time) float64
}

// Table maps loan ids to their overrides.
type Table map[int64]Override

// WeeklyAccrual accrues a fixed weekly rate on top of a base amount from an
// anchor date: base + rate * weeksBetween(anchor, analysisDate).
type WeeklyAccrual struct {
	Base   float64
	Rate   float64
	Anchor time.Time
}

// ExpectedAmt implements Override.
func (w WeeklyAccrual) ExpectedAmt(_ float64, analysisDate time.Time) float64 {
	return w.Base + w.Rate*float64(calendar.WeeksBetween(w.Anchor, analysisDate))
}

// TwoRateDaily charges FirstRate per elapsed day up to PivotDays and
// SecondRate per day beyond it. When Piecewise is false the second-rate
// term applies unconditionally, going negative before the pivot; that is
// the documented behavior of one of the historical overrides and is kept
// as-is.
type TwoRateDaily struct {
	PivotDays  float64
	FirstRate  float64
	SecondRate float64
	Piecewise  bool
}

// ExpectedAmt implements Override.
func (r TwoRateDaily) ExpectedAmt(daysPassed float64, _ time.Time) float64 {
	if r.Piecewise && daysPassed <= r.PivotDays {
		return daysPassed * r.FirstRate
	}
	return r.PivotDays*r.FirstRate + (daysPassed-r.PivotDays)*r.SecondRate
}

// DefaultOverrides reproduces the three documented anomalous-loan formulas.
func DefaultOverrides() Table {
	return Table{
		27: WeeklyAccrual{
			Base:   50600,
			Rate:   4500,
			Anchor: time.Date(2020, time.July, 15, 0, 0, 0, 0, time.UTC),
		},
		99: TwoRateDaily{PivotDays: 55, FirstRate: 213, SecondRate: 700},
		56: TwoRateDaily{PivotDays: 103, FirstRate: 200, SecondRate: 500, Piecewise: true},
	}
}
