// Package loans builds per-loan financial state from loan master data and
// aggregated ledger figures: adjusted amount owed, payment start date,
// current balance, and the active-loan selection.
package loans

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendline/delinq/internal/model"
)

var one = decimal.NewFromInt(1)

// RankPerBusiness assigns the per-business recency rank: within each
// business id, loans originated on or before the analysis date are ranked
// by origination date descending, most recent first. Loans originated after
// the analysis date keep rank 0 and never count as most recent.
func RankPerBusiness(ls []model.Loan, analysisDate time.Time) []model.Loan {
	byBusiness := make(map[int64][]int)
	for i, l := range ls {
		if l.LoanDate.After(analysisDate) {
			continue
		}
		byBusiness[l.BusinessID] = append(byBusiness[l.BusinessID], i)
	}
	ranked := make([]model.Loan, len(ls))
	copy(ranked, ls)
	for _, idxs := range byBusiness {
		sort.Slice(idxs, func(a, b int) bool {
			la, lb := ranked[idxs[a]], ranked[idxs[b]]
			if !la.LoanDate.Equal(lb.LoanDate) {
				return la.LoanDate.After(lb.LoanDate)
			}
			return la.LoanID > lb.LoanID
		})
		for rank, i := range idxs {
			ranked[i].RankActive = rank + 1
		}
	}
	return ranked
}

// BuildStates joins ranked loans with the combined paid-to-date figures and
// the earliest bank-transaction dates.
//
// The forwarded balance is forced to zero for the most recent loan of each
// business before the adjusted amount owed is computed:
//
//	adjusted owed = owed + refinancing fee + carried-over balance
//	              + refinanced interest - forwarded balance
//
// Payment start is the earliest bank-transaction date, falling back to the
// loan's first transaction date. A loan absent from both ledgers has a
// paid-to-date of zero.
func BuildStates(ls []model.Loan, paidToDate map[int64]decimal.Decimal, firstBank map[int64]time.Time) []model.LoanState {
	states := make([]model.LoanState, len(ls))
	for i, l := range ls {
		if l.RankActive == 1 {
			l.AmtOwedFwded = decimal.Zero
		}

		s := model.LoanState{Loan: l}
		s.AmtOwedAdj = l.AmtOwed.
			Add(l.RefinancingFee).
			Add(l.CarriedOverBal).
			Add(l.RefinancedInterest).
			Sub(l.AmtOwedFwded)

		if d, ok := firstBank[l.LoanID]; ok {
			first := d
			s.FirstBankDate = &first
			s.PaymentStart = &first
		} else {
			s.PaymentStart = l.FirstTransaction
		}

		if paid, ok := paidToDate[l.LoanID]; ok {
			s.AmtPaidToDate = paid
			s.HasPaid = true
		}
		s.LoanBalance = s.AmtOwedAdj.Sub(s.AmtPaidToDate)

		states[i] = s
	}
	return states
}

// SelectActive keeps loans that are active and analyzable as of the
// analysis date: originated on or before it, with a scheduled payment above
// one and a current balance above one. Rows failing any clause are dropped.
func SelectActive(states []model.LoanState, analysisDate time.Time) []model.LoanState {
	var active []model.LoanState
	for _, s := range states {
		if s.LoanDate.After(analysisDate) {
			continue
		}
		if !s.DailyPayment.GreaterThan(one) {
			continue
		}
		if !s.LoanBalance.GreaterThan(one) {
			continue
		}
		active = append(active, s)
	}
	return active
}

// ApplyReconciled overrides paid-to-date with the restricted re-aggregation
// computed for conversion-type loans, where present. The loan balance is
// not recomputed; the selection predicate has already been applied against
// the general figure.
func ApplyReconciled(states []model.LoanState, reconciled map[int64]decimal.Decimal) []model.LoanState {
	for i := range states {
		if paid, ok := reconciled[states[i].LoanID]; ok {
			states[i].AmtPaidToDate = paid
			states[i].HasPaid = true
		}
	}
	return states
}
