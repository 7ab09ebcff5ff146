package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one output record: a loan's delinquency state as of the analysis
// date, in reporting-schema terms. Float metric fields use NaN for
// undefined; the sink persists NaN, empty labels and nil pointers as NULL.
type Row struct {
	LoanID     int64
	BusinessID int64
	LoanDate   time.Time
	FirstTrans *time.Time
	FirstBank  *time.Time

	LoanAmt        decimal.Decimal
	Term           float64
	AmtOwed        decimal.Decimal
	CarriedOverBal decimal.Decimal
	RefinancingFee decimal.Decimal
	AmtOwedFwded   decimal.Decimal
	AmtOwedAdj     decimal.Decimal
	AmtPaidToDate  decimal.Decimal
	LoanBalance    decimal.Decimal
	DailyPayment   decimal.Decimal

	DaysPassed         float64
	WeeksPassed        float64
	ExpectedAmt        float64
	AmtDelinquent      float64
	CalDays            float64
	PaymentsDelinquent float64
	RemainingTerm      float64
	PaymentsExpected   float64
	PaymentsPaid       float64

	Schedule string

	DelinquencyBin  string
	RevenueBin      string
	RevenueBinWide  string
	YearsBin        string
	CreditScoreBin  string
	CreditScore2Bin string

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

	Date time.Time
}

// workingColumns is the fixed output column set in its working-table order.
var workingColumns = []string{
	"LoanID",
	"BusinessID",
	"LoanDate",
	"FirstTransaction",
	"FirstBankDate",
	"LoanAmt",
	"Term",
	"AmtOwed",
	"CarriedOverBal",
	"RefinancingFee",
	"AmtOwedFwded",
	"AmtOwedAdj",
	"AmtPaidToDate",
	"LoanBalance",
	"DailyPayment",
	"DaysPassed",
	"WeeksPassed",
	"ExpectedAmt",
	"AmtDelinquent",
	"CalDays",
	"PaymentsDelinquent",
	"Schedule",
	"DelinquencyBin",
	"RevenueBin",
	"RevenueBinWide",
	"YearsBin",
	"CreditScoreBin",
	"CreditScore2Bin",
	"CreditScore",
	"CreditScore2",
	"YearsInBusiness",
	"AnnualRevenue",
	"AppType",
	"Industry1",
	"Industry2",
	"Industry3",
	"Industry4",
	"RepType",
	"Date",
	"RemainingTerm",
	"PaymentsExpected",
	"PaymentsPaid",
}

// columnRename maps every working column to its reporting-schema name.
// The mapping is a total bijection over the output set; a test enforces it.
var columnRename = map[string]string{
	"LoanID":             "loan_id",
	"BusinessID":         "business_id",
	"LoanDate":           "loan_date",
	"FirstTransaction":   "first_trans_date",
	"FirstBankDate":      "first_bank_trans_date",
	"LoanAmt":            "loan_amt",
	"Term":               "loan_term",
	"AmtOwed":            "amt_owed",
	"CarriedOverBal":     "carried_over_bal",
	"RefinancingFee":     "refinancing_fee",
	"AmtOwedFwded":       "fwded_balance",
	"AmtOwedAdj":         "adj_amt_owed",
	"AmtPaidToDate":      "paid_to_date",
	"LoanBalance":        "loan_balance",
	"DailyPayment":       "daily_payment",
	"DaysPassed":         "days_passed",
	"WeeksPassed":        "weeks_passed",
	"ExpectedAmt":        "expected_amt",
	"AmtDelinquent":      "amt_delinquent",
	"CalDays":            "calendar_days",
	"PaymentsDelinquent": "delinquent_payments",
	"Schedule":           "payment_schedule",
	"DelinquencyBin":     "delinquency_bins",
	"RevenueBin":         "revenue_bins",
	"RevenueBinWide":     "revenue_bins2",
	"YearsBin":           "years_in_business_bins",
	"CreditScoreBin":     "credit_score_bins",
	"CreditScore2Bin":    "credit_score2_bins",
	"CreditScore":        "credit_score",
	"CreditScore2":       "credit_score2",
	"YearsInBusiness":    "years_in_business",
	"AnnualRevenue":      "annual_revenue",
	"AppType":            "app_type",
	"Industry1":          "industry1",
	"Industry2":          "industry2",
	"Industry3":          "industry3",
	"Industry4":          "industry4",
	"RepType":            "rep_type",
	"Date":               "date",
	"RemainingTerm":      "remaining_term",
	"PaymentsExpected":   "expected_payments",
	"PaymentsPaid":       "paid_payments",
}

// Columns returns the destination column names in output order.
func Columns() []string {
	cols := make([]string, len(workingColumns))
	for i, w := range workingColumns {
		cols[i] = columnRename[w]
	}
	return cols
}

// values returns the row's column values in output order, with NaN floats,
// empty labels and nil pointers mapped to SQL NULL.
func (r Row) values() []any {
	return []any{
		r.LoanID,
		r.BusinessID,
		r.LoanDate,
		timeVal(r.FirstTrans),
		timeVal(r.FirstBank),
		r.LoanAmt,
		r.Term,
		r.AmtOwed,
		r.CarriedOverBal,
		r.RefinancingFee,
		r.AmtOwedFwded,
		r.AmtOwedAdj,
		r.AmtPaidToDate,
		r.LoanBalance,
		r.DailyPayment,
		floatVal(r.DaysPassed),
		floatVal(r.WeeksPassed),
		floatVal(r.ExpectedAmt),
		floatVal(r.AmtDelinquent),
		floatVal(r.CalDays),
		floatVal(r.PaymentsDelinquent),
		r.Schedule,
		labelVal(r.DelinquencyBin),
		labelVal(r.RevenueBin),
		labelVal(r.RevenueBinWide),
		labelVal(r.YearsBin),
		labelVal(r.CreditScoreBin),
		labelVal(r.CreditScore2Bin),
		ptrVal(r.CreditScore),
		ptrVal(r.CreditScore2),
		ptrVal(r.YearsInBusiness),
		ptrVal(r.AnnualRevenue),
		r.AppType,
		r.Industry1,
		r.Industry2,
		r.Industry3,
		r.Industry4,
		r.RepType,
		r.Date,
		floatVal(r.RemainingTerm),
		floatVal(r.PaymentsExpected),
		floatVal(r.PaymentsPaid),
	}
}
