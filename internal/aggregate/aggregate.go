// Package aggregate collapses per-transaction ledgers into per-loan net
// paid-to-date figures and merges the bank and adjustment sources.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendline/delinq/internal/model"
)

// Entry is a ledger row reduced to the fields aggregation cares about.
// Paid and Charged may be null; null amounts count as zero.
type Entry struct {
	LoanID  int64
	Paid    decimal.NullDecimal
	Charged decimal.NullDecimal
}

// FromBank adapts bank-transaction rows for aggregation.
func FromBank(txs []model.BankTransaction) []Entry {
	entries := make([]Entry, len(txs))
	for i, tx := range txs {
		entries[i] = Entry{LoanID: tx.LoanID, Paid: tx.AmtPaid, Charged: tx.AmtCharged}
	}
	return entries
}

// FromAdjustments adapts adjustment-transaction rows for aggregation.
func FromAdjustments(txs []model.AdjustmentTransaction) []Entry {
	entries := make([]Entry, len(txs))
	for i, tx := range txs {
		entries[i] = Entry{LoanID: tx.LoanID, Paid: tx.AmtPaid, Charged: tx.AmtCharged}
	}
	return entries
}

// Net groups entries by loan id and returns sum(paid) - sum(charged) per
// loan. Null paid/charged values are treated as zero before summation, so
// the result is always defined for every loan id seen.
func Net(entries []Entry) map[int64]decimal.Decimal {
	net := make(map[int64]decimal.Decimal)
	for _, e := range entries {
		net[e.LoanID] = net[e.LoanID].Add(amount(e.Paid)).Sub(amount(e.Charged))
	}
	return net
}

// Combine outer-joins two per-loan nets on loan id, treating a missing side
// as zero. Every loan id present in either input appears exactly once.
func Combine(bank, adj map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	paid := make(map[int64]decimal.Decimal, len(bank))
	for id, amt := range bank {
		paid[id] = amt
	}
	for id, amt := range adj {
		paid[id] = paid[id].Add(amt)
	}
	return paid
}

// EarliestDates returns the minimum transaction date per loan id.
func EarliestDates(txs []model.BankTransaction) map[int64]time.Time {
	min := make(map[int64]time.Time)
	for _, tx := range txs {
		if cur, ok := min[tx.LoanID]; !ok || tx.TransDate.Before(cur) {
			min[tx.LoanID] = tx.TransDate
		}
	}
	return min
}

func amount(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
