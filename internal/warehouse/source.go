// Package warehouse reads the upstream reporting views: loan master data,
// the bank-transaction ledger and the adjustment-transaction ledger. All
// queries are read-only and parameterized on the analysis date.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lendline/delinq/internal/model"
)

// Store provides read access to the warehouse.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open warehouse connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Loans returns every loan master row except the configured excluded ids.
// Ranking and active selection happen downstream in the loan state builder.
func (s *Store) Loans(ctx context.Context, excludedIDs []int64) ([]model.Loan, error) {
	query := `
		SELECT loan_id, business_id, loan_date, first_transaction, last_transaction,
		       loan_amt, loan_term, amt_owed, carried_over_bal, refinancing_fee,
		       refinanced_interest, amt_owed_fwded, daily_payment, payment_schedule,
		       credit_score, credit_score2, years_in_business, annual_revenue,
		       app_type, industry1, industry2, industry3, industry4, rep_type
		FROM reporting.vw_loans
		WHERE loan_id <> ALL($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(excludedIDs))
	if err != nil {
		return nil, fmt.Errorf("querying loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var (
			l                      model.Loan
			first, last            sql.NullTime
			schedule               sql.NullString
			score, score2          sql.NullFloat64
			years, revenue         sql.NullFloat64
			appType, repType       sql.NullString
			ind1, ind2, ind3, ind4 sql.NullString
		)
		err := rows.Scan(
			&l.LoanID, &l.BusinessID, &l.LoanDate, &first, &last,
			&l.LoanAmt, &l.Term, &l.AmtOwed, &l.CarriedOverBal, &l.RefinancingFee,
			&l.RefinancedInterest, &l.AmtOwedFwded, &l.DailyPayment, &schedule,
			&score, &score2, &years, &revenue,
			&appType, &ind1, &ind2, &ind3, &ind4, &repType,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		l.FirstTransaction = nullTime(first)
		l.LastTransaction = nullTime(last)
		l.Schedule = model.ParseSchedule(schedule.String)
		l.CreditScore = nullFloat(score)
		l.CreditScore2 = nullFloat(score2)
		l.YearsInBusiness = nullFloat(years)
		l.AnnualRevenue = nullFloat(revenue)
		l.AppType = appType.String
		l.Industry1 = ind1.String
		l.Industry2 = ind2.String
		l.Industry3 = ind3.String
		l.Industry4 = ind4.String
		l.RepType = repType.String
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading loans: %w", err)
	}
	return loans, nil
}

// BankTransactions returns all bank-transaction ledger rows through the
// analysis date.
func (s *Store) BankTransactions(ctx context.Context, asOf time.Time) ([]model.BankTransaction, error) {
	query := `
		SELECT loan_id, amt_paid, amt_charged, trans_date
		FROM reporting.vw_bank_transactions
		WHERE trans_date <= $1`
	return s.bankRows(ctx, query, asOf)
}

// BankTransactionsForLoans restricts the bank ledger to the given loan ids,
// used by the conversion reconciliation.
func (s *Store) BankTransactionsForLoans(ctx context.Context, asOf time.Time, loanIDs []int64) ([]model.BankTransaction, error) {
	query := `
		SELECT loan_id, amt_paid, amt_charged, trans_date
		FROM reporting.vw_bank_transactions
		WHERE trans_date <= $1 AND loan_id = ANY($2)`
	return s.bankRows(ctx, query, asOf, pq.Array(loanIDs))
}

func (s *Store) bankRows(ctx context.Context, query string, args ...any) ([]model.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.BankTransaction
	for rows.Next() {
		var tx model.BankTransaction
		if err := rows.Scan(&tx.LoanID, &tx.AmtPaid, &tx.AmtCharged, &tx.TransDate); err != nil {
			return nil, fmt.Errorf("scanning bank transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bank transactions: %w", err)
	}
	return txs, nil
}

// AdjustmentTransactions returns all adjustment ledger rows through the
// analysis date, dropping the excluded refinance-fee and write-off types.
func (s *Store) AdjustmentTransactions(ctx context.Context, asOf time.Time) ([]model.AdjustmentTransaction, error) {
	query := `
		SELECT business_id, loan_id, owed_amt_paid, owed_amt_charged, trans_date, trans_type
		FROM reporting.vw_adjustment_transactions
		WHERE trans_date <= $1 AND trans_type NOT IN ($2, $3)`
	return s.adjustmentRows(ctx, query, asOf, model.TransTypeRefiFee, model.TransTypeWriteOff)
}

// AdjustmentTransactionsReconcilable returns adjustment rows for the given
// loans excluding the reversal, chargeback and conversion types. This is
// the restricted re-aggregation input for conversion-type loans.
func (s *Store) AdjustmentTransactionsReconcilable(ctx context.Context, asOf time.Time, loanIDs []int64) ([]model.AdjustmentTransaction, error) {
	query := `
		SELECT business_id, loan_id, owed_amt_paid, owed_amt_charged, trans_date, trans_type
		FROM reporting.vw_adjustment_transactions
		WHERE trans_date <= $1 AND loan_id = ANY($2) AND trans_type NOT IN ($3, $4, $5)`
	return s.adjustmentRows(ctx, query, asOf, pq.Array(loanIDs),
		model.TransTypeReversal, model.TransTypeChargeback, model.TransTypeConversion)
}

func (s *Store) adjustmentRows(ctx context.Context, query string, args ...any) ([]model.AdjustmentTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying adjustment transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.AdjustmentTransaction
	for rows.Next() {
		var tx model.AdjustmentTransaction
		if err := rows.Scan(&tx.BusinessID, &tx.LoanID, &tx.AmtPaid, &tx.AmtCharged, &tx.TransDate, &tx.TransType); err != nil {
			return nil, fmt.Errorf("scanning adjustment transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading adjustment transactions: %w", err)
	}
	return txs, nil
}

// ConversionLoanIDs returns the loan ids carrying a conversion-type
// adjustment row.
func (s *Store) ConversionLoanIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT loan_id
		FROM reporting.vw_adjustment_transactions
		WHERE trans_type = $1`
	rows, err := s.db.QueryContext(ctx, query, model.TransTypeConversion)
	if err != nil {
		return nil, fmt.Errorf("querying conversion loans: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversion loan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversion loans: %w", err)
	}
	return ids, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
