// Package pipeline sequences one full delinquency run: load loans and
// ledgers from the warehouse, derive per-loan state and metrics, classify,
// and replace the reporting rows for the analysis date.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lendline/delinq/internal/aggregate"
	"github.com/lendline/delinq/internal/calendar"
	"github.com/lendline/delinq/internal/classify"
	"github.com/lendline/delinq/internal/delinquency"
	"github.com/lendline/delinq/internal/loans"
	"github.com/lendline/delinq/internal/model"
	"github.com/lendline/delinq/internal/reporting"
)

// Mode selects the analysis date and the destination table.
type Mode string

const (
	ModeDaily      Mode = "daily"
	ModeHistorical Mode = "historical"
)

// ParseMode validates a mode string. Anything but the two known modes is a
// configuration error and must abort before any data is touched.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDaily, ModeHistorical:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q: expected daily or historical", s)
	}
}

// Table returns the destination reporting table for the mode.
func (m Mode) Table() string {
	if m == ModeHistorical {
		return reporting.TableHistorical
	}
	return reporting.TableDaily
}

// AnalysisDate derives the analysis date from the injected clock: two
// business days back for the daily run, first of the current month for the
// historical run.
func AnalysisDate(mode Mode, now time.Time) time.Time {
	if mode == ModeHistorical {
		d := calendar.DateOf(now)
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return calendar.BusinessDaysAgo(now, 2)
}

// Source reads loans and transaction ledgers from the warehouse.
type Source interface {
	Loans(ctx context.Context, excludedIDs []int64) ([]model.Loan, error)
	BankTransactions(ctx context.Context, asOf time.Time) ([]model.BankTransaction, error)
	BankTransactionsForLoans(ctx context.Context, asOf time.Time, loanIDs []int64) ([]model.BankTransaction, error)
	AdjustmentTransactions(ctx context.Context, asOf time.Time) ([]model.AdjustmentTransaction, error)
	AdjustmentTransactionsReconcilable(ctx context.Context, asOf time.Time, loanIDs []int64) ([]model.AdjustmentTransaction, error)
	ConversionLoanIDs(ctx context.Context) ([]int64, error)
}

// Sink writes the derived rows to the reporting store.
type Sink interface {
	DeleteForDate(ctx context.Context, table string, date time.Time) (int64, error)
	Insert(ctx context.Context, table string, rows []reporting.Row) error
}

// Result summarizes one run for the caller and the run log.
type Result struct {
	AnalysisDate time.Time
	RowsDeleted  int64
	RowsInserted int
}

// Pipeline wires a source, a sink and a calculator into one runnable job.
type Pipeline struct {
	Source      Source
	Sink        Sink
	Calc        *delinquency.Calculator
	ExcludedIDs []int64
	Log         *logrus.Logger
}

// New returns a Pipeline logging to the standard logrus logger.
func New(source Source, sink Sink, calc *delinquency.Calculator, excludedIDs []int64) *Pipeline {
	return &Pipeline{
		Source:      source,
		Sink:        sink,
		Calc:        calc,
		ExcludedIDs: excludedIDs,
		Log:         logrus.StandardLogger(),
	}
}

// Run executes one full pass for the given mode. The clock is injected;
// nothing downstream reads wall time. Delete and insert are separate
// statements, so a crash between them is repaired by re-running the same
// mode and date.
func (p *Pipeline) Run(ctx context.Context, mode Mode, now time.Time) (Result, error) {
	analysisDate := AnalysisDate(mode, now)
	table := mode.Table()
	log := p.Log.WithFields(logrus.Fields{
		"mode":          string(mode),
		"analysis_date": analysisDate.Format("2006-01-02"),
	})
	log.Info("starting delinquency run")

	ls, err := p.Source.Loans(ctx, p.ExcludedIDs)
	if err != nil {
		return Result{}, fmt.Errorf("loading loans: %w", err)
	}
	log.WithField("rows", len(ls)).Info("loaded loans")

	ranked := loans.RankPerBusiness(ls, analysisDate)

	bank, err := p.Source.BankTransactions(ctx, analysisDate)
	if err != nil {
		return Result{}, fmt.Errorf("loading bank transactions: %w", err)
	}
	log.WithField("rows", len(bank)).Info("loaded bank transactions")

	adj, err := p.Source.AdjustmentTransactions(ctx, analysisDate)
	if err != nil {
		return Result{}, fmt.Errorf("loading adjustment transactions: %w", err)
	}
	log.WithField("rows", len(adj)).Info("loaded adjustment transactions")

	paid := aggregate.Combine(
		aggregate.Net(aggregate.FromBank(bank)),
		aggregate.Net(aggregate.FromAdjustments(adj)),
	)
	firstBank := aggregate.EarliestDates(bank)
	log.WithField("rows", len(paid)).Info("aggregated paid to date")

	states := loans.BuildStates(ranked, paid, firstBank)
	active := loans.SelectActive(states, analysisDate)
	log.WithField("rows", len(active)).Info("selected active loans")

	active, err = p.reconcileConversions(ctx, active, analysisDate, log)
	if err != nil {
		return Result{}, err
	}

	rows := make([]reporting.Row, len(active))
	for i, s := range active {
		rows[i] = p.assemble(s, analysisDate)
	}
	log.WithFields(logrus.Fields{"rows": len(rows), "columns": len(reporting.Columns())}).
		Info("derived delinquency rows")

	deleted, err := p.Sink.DeleteForDate(ctx, table, analysisDate)
	if err != nil {
		return Result{}, fmt.Errorf("deleting existing rows: %w", err)
	}
	log.WithFields(logrus.Fields{"table": table, "rows": deleted}).Info("deleted existing rows")

	if err := p.Sink.Insert(ctx, table, rows); err != nil {
		return Result{}, fmt.Errorf("inserting rows: %w", err)
	}
	log.WithFields(logrus.Fields{"table": table, "rows": len(rows)}).Info("inserted rows")

	return Result{AnalysisDate: analysisDate, RowsDeleted: deleted, RowsInserted: len(rows)}, nil
}

// reconcileConversions recomputes paid-to-date for active loans that carry a
// conversion adjustment, from bank rows plus adjustments excluding reversal,
// chargeback and conversion codes. The recomputed figure overrides the
// general one; the loan balance is left as built.
func (p *Pipeline) reconcileConversions(ctx context.Context, active []model.LoanState, analysisDate time.Time, log *logrus.Entry) ([]model.LoanState, error) {
	convIDs, err := p.Source.ConversionLoanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading conversion loan ids: %w", err)
	}

	activeSet := make(map[int64]struct{}, len(active))
	for _, s := range active {
		activeSet[s.LoanID] = struct{}{}
	}
	var ids []int64
	for _, id := range convIDs {
		if _, ok := activeSet[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return active, nil
	}

	bank, err := p.Source.BankTransactionsForLoans(ctx, analysisDate, ids)
	if err != nil {
		return nil, fmt.Errorf("loading conversion bank transactions: %w", err)
	}
	adj, err := p.Source.AdjustmentTransactionsReconcilable(ctx, analysisDate, ids)
	if err != nil {
		return nil, fmt.Errorf("loading conversion adjustments: %w", err)
	}

	reconciled := aggregate.Combine(
		aggregate.Net(aggregate.FromBank(bank)),
		aggregate.Net(aggregate.FromAdjustments(adj)),
	)
	log.WithField("rows", len(ids)).Info("reconciled conversion loans")
	return loans.ApplyReconciled(active, reconciled), nil
}

// assemble derives metrics and classifications for one loan state and
// projects everything into an output row.
func (p *Pipeline) assemble(s model.LoanState, analysisDate time.Time) reporting.Row {
	m := p.Calc.Compute(s, analysisDate)
	labels := classify.Classify(m.CalDays, s.AnnualRevenue, s.YearsInBusiness, s.CreditScore, s.CreditScore2)

	return reporting.Row{
		LoanID:     s.LoanID,
		BusinessID: s.BusinessID,
		LoanDate:   s.LoanDate,
		FirstTrans: s.FirstTransaction,
		FirstBank:  s.FirstBankDate,

		LoanAmt:        s.LoanAmt,
		Term:           s.Term,
		AmtOwed:        s.AmtOwed,
		CarriedOverBal: s.CarriedOverBal,
		RefinancingFee: s.RefinancingFee,
		AmtOwedFwded:   s.AmtOwedFwded,
		AmtOwedAdj:     s.AmtOwedAdj,
		AmtPaidToDate:  s.AmtPaidToDate,
		LoanBalance:    s.LoanBalance,
		DailyPayment:   s.DailyPayment,

		DaysPassed:         m.DaysPassed,
		WeeksPassed:        m.WeeksPassed,
		ExpectedAmt:        m.ExpectedAmt,
		AmtDelinquent:      m.AmtDelinquent,
		CalDays:            m.CalDays,
		PaymentsDelinquent: m.PaymentsDelinquent,
		RemainingTerm:      m.RemainingTerm,
		PaymentsExpected:   m.PaymentsExpected,
		PaymentsPaid:       m.PaymentsPaid,

		Schedule: string(s.Schedule),

		DelinquencyBin:  labels.Delinquency,
		RevenueBin:      labels.Revenue,
		RevenueBinWide:  labels.RevenueWide,
		YearsBin:        labels.YearsInBiz,
		CreditScoreBin:  labels.CreditScore,
		CreditScore2Bin: labels.CreditScore2,

		CreditScore:     s.CreditScore,
		CreditScore2:    s.CreditScore2,
		YearsInBusiness: s.YearsInBusiness,
		AnnualRevenue:   s.AnnualRevenue,
		AppType:         s.AppType,
		Industry1:       s.Industry1,
		Industry2:       s.Industry2,
		Industry3:       s.Industry3,
		Industry4:       s.Industry4,
		RepType:         s.RepType,

		Date: analysisDate,
	}
}
