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

	"github.com/google/uuid"
)

// Status of one processed file.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one row in the run log: one input file of one run.
type Entry struct {
	Timestamp time.Time
	RunID     string
	File      string
	Account   string
	Rows      int // rows read from the file
	Kept      int // transactions written after the date filter
	Status    Status
	Error     string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,file,account,rows,kept,status,error"

const (
	numFields    = 8
	logDir       = "logs"
	logFile      = "logs/run-log.csv"
	colTimestamp = 0
	colRunID     = 1
	colFile      = 2
	colAccount   = 3
	colRows      = 4
	colKept      = 5
	colStatus    = 6
	colError     = 7
)

// NewRunID returns a fresh identifier shared by the entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Path returns the run log location under storage.
func Path(storage string) string {
	return filepath.Join(storage, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colAccount] = e.Account
	row[colRows] = strconv.Itoa(e.Rows)
	row[colKept] = strconv.Itoa(e.Kept)
	row[colStatus] = string(e.Status)
	row[colError] = e.Error
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
	rows, err := strconv.Atoi(record[colRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows %q: %w", record[colRows], err)
	}
	kept, err := strconv.Atoi(record[colKept])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing kept %q: %w", record[colKept], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		File:      record[colFile],
		Account:   record[colAccount],
		Rows:      rows,
		Kept:      kept,
		Status:    Status(record[colStatus]),
		Error:     record[colError],
	}, nil
}

// Append writes entries to <storage>/logs/run-log.csv, creating the file and header if needed.
func Append(storage string, entries []Entry) error {
	dir := filepath.Join(storage, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(storage)
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

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <storage>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(storage string) ([]Entry, error) {
	f, err := os.Open(Path(storage))
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
