// Package runlog keeps a CSV audit trail of pipeline invocations: one row
// per run with its mode, analysis date and outcome.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp    time.Time
	Mode         string
	AnalysisDate time.Time
	RowsDeleted  int64
	RowsInserted int
	Status       string // "ok" or an error summary
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,mode,analysis_date,rows_deleted,rows_inserted,status"

const (
	numFields       = 6
	logFile         = "run-log.csv"
	dateFormat      = "2006-01-02"
	colTimestamp    = 0
	colMode         = 1
	colAnalysisDate = 2
	colRowsDeleted  = 3
	colRowsInserted = 4
	colStatus       = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colMode] = e.Mode
	row[colAnalysisDate] = e.AnalysisDate.Format(dateFormat)
	row[colRowsDeleted] = strconv.FormatInt(e.RowsDeleted, 10)
	row[colRowsInserted] = strconv.Itoa(e.RowsInserted)
	row[colStatus] = e.Status
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	analysisDate, err := time.Parse(dateFormat, record[colAnalysisDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing analysis_date %q: %w", record[colAnalysisDate], err)
	}
	deleted, err := strconv.ParseInt(record[colRowsDeleted], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows_deleted %q: %w", record[colRowsDeleted], err)
	}
	inserted, err := strconv.Atoi(record[colRowsInserted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows_inserted %q: %w", record[colRowsInserted], err)
	}

	return Entry{
		Timestamp:    ts,
		Mode:         record[colMode],
		AnalysisDate: analysisDate,
		RowsDeleted:  deleted,
		RowsInserted: inserted,
		Status:       record[colStatus],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating the file and header
// if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/run-log.csv. Returns an empty slice
// if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
