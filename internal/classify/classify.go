// Package classify bins continuous loan metrics into the fixed labeled
// categories the reporting schema expects. Breakpoint tables are half-open,
// lower-bound inclusive; years-in-business keeps the historical
// upper-inclusive integer boundaries.
package classify

import "math"

// NoRevenueInfo and NoYearsInfo are the sentinel labels for missing inputs.
// Inputs that miss a table entirely (undefined delinquency days,
// out-of-range credit scores) get an empty label, persisted as NULL.
const (
	NoRevenueInfo = "No Rev Info"
	NoYearsInfo   = "No Info"
)

// Labels holds every classification for one loan.
type Labels struct {
	Delinquency  string
	Revenue      string
	RevenueWide  string
	YearsInBiz   string
	CreditScore  string
	CreditScore2 string
}

// Classify bins calendar days behind plus the loan's static attributes.
// Nilable attributes arrive as pointers; calDays uses NaN for undefined.
func Classify(calDays float64, revenue, yearsInBiz, score, score2 *float64) Labels {
	return Labels{
		Delinquency:  DelinquencyDays(calDays),
		Revenue:      RevenueBand(revenue),
		RevenueWide:  RevenueBandWide(revenue),
		YearsInBiz:   YearsInBusiness(yearsInBiz),
		CreditScore:  CreditScoreBand(score),
		CreditScore2: CreditScoreBand(score2),
	}
}

var delinquencyBins = []struct {
	upper float64
	label string
}{
	{4, "0-3"},
	{15, "4-14"},
	{30, "15-29"},
	{60, "30-59"},
	{90, "60-89"},
	{120, "90-119"},
	{150, "120-149"},
	{180, "150-179"},
	{math.Inf(1), "180+"},
}

// DelinquencyDays bins calendar days behind. Undefined or infinite values
// produce no label.
func DelinquencyDays(calDays float64) string {
	if math.IsNaN(calDays) || math.IsInf(calDays, 0) || calDays < 0 {
		return ""
	}
	for _, bin := range delinquencyBins {
		if calDays < bin.upper {
			return bin.label
		}
	}
	return ""
}

var revenueBins = []struct {
	upper float64
	label string
}{
	{120_000, "0-119K"},
	{175_000, "120-174K"},
	{200_000, "175-199K"},
	{500_000, "200-499K"},
	{1_000_000, "500-999K"},
	{2_000_000, "1-2M"},
	{5_000_000, "2-5M"},
	{10_000_000, "5-10M"},
	{math.Inf(1), ">=10M"},
}

// RevenueBand bins annual revenue at the fine granularity; missing revenue
// maps to the explicit no-information label.
func RevenueBand(revenue *float64) string {
	if revenue == nil {
		return NoRevenueInfo
	}
	for _, bin := range revenueBins {
		if *revenue < bin.upper {
			return bin.label
		}
	}
	return ""
}

// RevenueBandWide bins annual revenue at the coarse granularity.
func RevenueBandWide(revenue *float64) string {
	switch {
	case revenue == nil:
		return NoRevenueInfo
	case *revenue < 175_000:
		return "0-174K"
	case *revenue < 200_000:
		return "175-199K"
	default:
		return "200K+"
	}
}

var yearsLabels = []string{
	"10-14", "15-19", "20-24", "25-29", "30-34",
	"35-39", "40-44", "45-49", "50-99", "100+",
}

// YearsInBusiness bins years in business: single-year buckets through 9,
// then five-year bands, then 50-99 and 100+. Boundaries are upper-inclusive
// to match the historical binning of fractional years.
func YearsInBusiness(years *float64) string {
	if years == nil {
		return NoYearsInfo
	}
	y := *years
	for n := 0; n <= 9; n++ {
		if y <= float64(n) {
			return yearsLabels0to9[n]
		}
	}
	uppers := []float64{14, 19, 24, 29, 34, 39, 44, 49, 99}
	for i, upper := range uppers {
		if y <= upper {
			return yearsLabels[i]
		}
	}
	return "100+"
}

var yearsLabels0to9 = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// CreditScoreBand bins a credit score into 50-point bands over [400, 900).
// Scores outside the range, or missing, produce no label.
func CreditScoreBand(score *float64) string {
	if score == nil {
		return ""
	}
	s := *score
	if s < 400 || s >= 900 {
		return ""
	}
	bands := []string{
		"400-449", "450-499", "500-549", "550-599", "600-649",
		"650-699", "700-749", "750-799", "800-849", "850-899",
	}
	return bands[int((s-400)/50)]
}
