// Package reporting writes delinquency rows to the reporting store. Writes
// for an analysis date are delete-then-bulk-insert; the two steps are not
// one transaction, and a re-run repairs any crash window by recomputing
// from scratch.
package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
)

const schema = "reports"

// Destination tables, selected by run mode.
const (
	TableDaily      = "delinquency_daily"
	TableHistorical = "delinquency_historical"
)

// Store writes result rows to the reporting database.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open reporting connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DeleteForDate removes any pre-existing rows for the analysis date so the
// subsequent insert is idempotent per date.
func (s *Store) DeleteForDate(ctx context.Context, table string, date time.Time) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`DELETE FROM %s.%s WHERE date = $1`, schema, table)
	res, err := s.db.ExecContext(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("deleting rows for %s: %w", date.Format("2006-01-02"), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}
	return n, nil
}

// Insert bulk-loads the rows into the destination table.
func (s *Store) Insert(ctx context.Context, table string, rows []Row) error {
	if err := validTable(table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(schema, table, Columns()...))
	if err != nil {
		return fmt.Errorf("preparing bulk insert: %w", err)
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.values()...); err != nil {
			stmt.Close()
			return fmt.Errorf("buffering row for loan %d: %w", row.LoanID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing bulk insert: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing bulk insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	return nil
}

func validTable(table string) error {
	if table != TableDaily && table != TableHistorical {
		return fmt.Errorf("unknown reporting table %q", table)
	}
	return nil
}

func floatVal(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func labelVal(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptrVal(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func timeVal(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
