package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment transaction type codes with documented exclusion semantics.
// Refinance-fee and write-off rows (15, 4) never enter aggregation; a
// conversion row (34) marks a loan whose paid-to-date must be recomputed
// from a restricted re-aggregation excluding codes 91, 97 and 34 itself.
const (
	TransTypeWriteOff   = 4
	TransTypeRefiFee    = 15
	TransTypeConversion = 34
	TransTypeReversal   = 91
	TransTypeChargeback = 97
)

// BankTransaction is one row from the bank-transaction ledger view.
// Paid/charged come back NULL for some rows; they are zero-filled before
// aggregation.
type BankTransaction struct {
	LoanID     int64
	AmtPaid    decimal.NullDecimal
	AmtCharged decimal.NullDecimal
	TransDate  time.Time
}

// AdjustmentTransaction is one row from the adjustment-transaction ledger view.
type AdjustmentTransaction struct {
	BusinessID int64
	LoanID     int64
	AmtPaid    decimal.NullDecimal
	AmtCharged decimal.NullDecimal
	TransDate  time.Time
	TransType  int
}
