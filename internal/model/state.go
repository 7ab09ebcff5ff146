package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanState is a loan joined with its aggregated ledger state as of the
// analysis date. One LoanState per loan; derived delinquency metrics are
// computed from it downstream.
type LoanState struct {
	Loan

	// FirstBankDate is the earliest bank-transaction date for the loan, if any.
	FirstBankDate *time.Time

	// PaymentStart is FirstBankDate, falling back to the loan's first
	// transaction date when no bank transaction exists.
	PaymentStart *time.Time

	// HasPaid reports whether either ledger contributed a paid-to-date figure.
	HasPaid bool

	AmtOwedAdj    decimal.Decimal
	AmtPaidToDate decimal.Decimal
	LoanBalance   decimal.Decimal
}
