package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSchedule is the repayment cadence of a loan.
type PaymentSchedule string

const (
	ScheduleDaily  PaymentSchedule = "daily"
	ScheduleWeekly PaymentSchedule = "weekly"
)

// ParseSchedule normalizes a raw schedule string from the warehouse.
func ParseSchedule(s string) PaymentSchedule {
	return PaymentSchedule(strings.ToLower(strings.TrimSpace(s)))
}

// Loan is one row from the loan master view, joined with the per-business
// recency rank. Money fields are exact decimals; nullable columns are pointers.
type Loan struct {
	LoanID     int64
	BusinessID int64
	LoanDate   time.Time

	FirstTransaction *time.Time
	LastTransaction  *time.Time

	LoanAmt            decimal.Decimal
	Term               float64 // stated term in months
	AmtOwed            decimal.Decimal
	CarriedOverBal     decimal.Decimal
	RefinancingFee     decimal.Decimal
	RefinancedInterest decimal.Decimal
	AmtOwedFwded       decimal.Decimal
	DailyPayment       decimal.Decimal
	Schedule           PaymentSchedule

	// Static attributes used only for classification.
	CreditScore     *float64
	CreditScore2    *float64
	YearsInBusiness *float64
	AnnualRevenue   *float64
	AppType         string
	Industry1       string
	Industry2       string
	Industry3       string
	Industry4       string
	RepType         string

	// RankActive is 1 for the most recently originated loan of a business.
	RankActive int
}
