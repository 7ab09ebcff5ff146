package reporting

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRename_TotalBijection(t *testing.T) {
	// Every working column maps to exactly one destination name.
	require.Len(t, columnRename, len(workingColumns), "rename map covers the output set exactly")

	seen := make(map[string]string, len(columnRename))
	for working, dest := range columnRename {
		require.NotEmpty(t, dest, "column %s has no destination name", working)
		prev, dup := seen[dest]
		require.False(t, dup, "destination %s claimed by both %s and %s", dest, prev, working)
		seen[dest] = working
	}

	for _, working := range workingColumns {
		_, ok := columnRename[working]
		assert.True(t, ok, "working column %s has no rename entry", working)
	}
}

func TestColumns_OrderMatchesValues(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, len(workingColumns))
	assert.Equal(t, "loan_id", cols[0])
	assert.Equal(t, "paid_payments", cols[len(cols)-1])

	var r Row
	assert.Len(t, r.values(), len(cols), "one value per output column")
}

func TestRowValues_NullSentinels(t *testing.T) {
	now := time.Date(2020, time.May, 14, 0, 0, 0, 0, time.UTC)
	r := Row{
		LoanID:      7,
		LoanDate:    now,
		Date:        now,
		Schedule:    "daily",
		DaysPassed:  9,
		WeeksPassed: math.NaN(),
		CalDays:     math.NaN(),
	}

	vals := r.values()
	byCol := make(map[string]any, len(vals))
	for i, col := range Columns() {
		byCol[col] = vals[i]
	}

	assert.Equal(t, int64(7), byCol["loan_id"])
	assert.Equal(t, 9.0, byCol["days_passed"])
	assert.Nil(t, byCol["weeks_passed"], "NaN becomes a true null")
	assert.Nil(t, byCol["calendar_days"])
	assert.Nil(t, byCol["first_trans_date"], "nil date becomes null")
	assert.Nil(t, byCol["delinquency_bins"], "empty label becomes null")
	assert.Nil(t, byCol["credit_score"], "missing score becomes null")
}

func TestValidTable(t *testing.T) {
	assert.NoError(t, validTable(TableDaily))
	assert.NoError(t, validTable(TableHistorical))
	assert.Error(t, validTable("delinquency_other"))
}
