package loans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendline/delinq/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRankPerBusiness(t *testing.T) {
	analysis := date(2020, time.June, 1)
	ls := []model.Loan{
		{LoanID: 1, BusinessID: 10, LoanDate: date(2019, time.January, 1)},
		{LoanID: 2, BusinessID: 10, LoanDate: date(2020, time.March, 1)},
		{LoanID: 3, BusinessID: 10, LoanDate: date(2020, time.August, 1)}, // after analysis date
		{LoanID: 4, BusinessID: 20, LoanDate: date(2018, time.May, 5)},
	}

	ranked := RankPerBusiness(ls, analysis)

	byID := make(map[int64]model.Loan)
	for _, l := range ranked {
		byID[l.LoanID] = l
	}
	assert.Equal(t, 2, byID[1].RankActive)
	assert.Equal(t, 1, byID[2].RankActive, "most recent loan on or before the analysis date")
	assert.Equal(t, 0, byID[3].RankActive, "future-dated loans are never ranked")
	assert.Equal(t, 1, byID[4].RankActive)
}

func TestBuildStates_AdjustedOwed(t *testing.T) {
	ls := []model.Loan{
		{
			LoanID: 1, BusinessID: 10, RankActive: 1,
			AmtOwed: dec("300"), RefinancingFee: dec("50"), CarriedOverBal: dec("100"),
			RefinancedInterest: dec("0"), AmtOwedFwded: dec("200"),
		},
		{
			LoanID: 2, BusinessID: 10, RankActive: 2,
			AmtOwed: dec("400"), RefinancingFee: dec("50"), CarriedOverBal: dec("200"),
			RefinancedInterest: dec("0"), AmtOwedFwded: dec("300"),
		},
		{
			LoanID: 3, BusinessID: 10, RankActive: 3,
			AmtOwed: dec("500"), RefinancingFee: dec("50"), CarriedOverBal: dec("300"),
			RefinancedInterest: dec("50"), AmtOwedFwded: dec("400"),
		},
	}

	states := BuildStates(ls, nil, nil)
	require.Len(t, states, 3)

	// Forwarded balance zeroed only for rank 1: 450 + 350 + 500 = 1300... the
	// individual values are what matter.
	assert.True(t, states[0].AmtOwedAdj.Equal(dec("450")), "rank 1: fwded balance zeroed")
	assert.True(t, states[1].AmtOwedAdj.Equal(dec("350")))
	assert.True(t, states[2].AmtOwedAdj.Equal(dec("500")))
}

func TestBuildStates_PaymentStartFallback(t *testing.T) {
	firstTrans := date(2020, time.March, 6)
	ls := []model.Loan{
		{LoanID: 1, FirstTransaction: &firstTrans},
		{LoanID: 2, FirstTransaction: &firstTrans},
	}
	firstBank := map[int64]time.Time{2: date(2020, time.March, 4)}

	states := BuildStates(ls, nil, firstBank)

	require.NotNil(t, states[0].PaymentStart)
	assert.Equal(t, firstTrans, *states[0].PaymentStart, "falls back to first transaction date")
	assert.Nil(t, states[0].FirstBankDate)

	require.NotNil(t, states[1].PaymentStart)
	assert.Equal(t, date(2020, time.March, 4), *states[1].PaymentStart)
}

func TestBuildStates_PaidToDateAndBalance(t *testing.T) {
	ls := []model.Loan{
		{LoanID: 1, AmtOwed: dec("1000")},
		{LoanID: 2, AmtOwed: dec("2000")},
	}
	paid := map[int64]decimal.Decimal{1: dec("400")}

	states := BuildStates(ls, paid, nil)

	assert.True(t, states[0].HasPaid)
	assert.True(t, states[0].LoanBalance.Equal(dec("600")))

	assert.False(t, states[1].HasPaid, "loan absent from both ledgers")
	assert.True(t, states[1].AmtPaidToDate.IsZero())
	assert.True(t, states[1].LoanBalance.Equal(dec("2000")))
}

func TestSelectActive(t *testing.T) {
	analysis := date(2020, time.January, 31)
	mk := func(id int64, loanDate time.Time, balance, payment string) model.LoanState {
		return model.LoanState{
			Loan:        model.Loan{LoanID: id, LoanDate: loanDate, DailyPayment: dec(payment)},
			LoanBalance: dec(balance),
		}
	}
	states := []model.LoanState{
		mk(1, date(2019, time.July, 13), "12", "100"),
		mk(2, date(2020, time.February, 1), "32", "200"), // originated after analysis date
		mk(3, date(2019, time.July, 13), "0", "300"),     // balance too low
		mk(4, date(2019, time.July, 13), "4", "400"),
		mk(5, date(2019, time.July, 13), "12", "0"), // zero payment
	}

	active := SelectActive(states, analysis)

	require.Len(t, active, 2)
	assert.LessOrEqual(t, len(active), len(states))
	for _, s := range active {
		assert.False(t, s.LoanDate.After(analysis))
		assert.True(t, s.DailyPayment.GreaterThan(dec("1")))
		assert.True(t, s.LoanBalance.GreaterThan(dec("1")))
	}
}

func TestApplyReconciled(t *testing.T) {
	states := []model.LoanState{
		{Loan: model.Loan{LoanID: 1}, AmtPaidToDate: dec("100"), LoanBalance: dec("900")},
		{Loan: model.Loan{LoanID: 2}, AmtPaidToDate: dec("200"), LoanBalance: dec("800")},
	}
	reconciled := map[int64]decimal.Decimal{2: dec("250")}

	states = ApplyReconciled(states, reconciled)

	assert.True(t, states[0].AmtPaidToDate.Equal(dec("100")), "untouched without a reconciled figure")
	assert.True(t, states[1].AmtPaidToDate.Equal(dec("250")))
	assert.True(t, states[1].LoanBalance.Equal(dec("800")), "balance keeps the pre-reconciliation figure")
}
