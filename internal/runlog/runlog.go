package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log. Note carries run warnings worth keeping
// next to the counts.
type Entry struct {
	Timestamp         time.Time
	RunID             string
	Input             string
	RowsLoaded        int
	RowsDropped       int
	DuplicatesRemoved int
	RowsExported      int
	Outcome           string
	Note              string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,input,rows_loaded,rows_dropped,duplicates_removed,rows_exported,outcome,note"

const (
	numFields     = 9
	colTimestamp  = 0
	colRunID      = 1
	colInput      = 2
	colLoaded     = 3
	colDropped    = 4
	colDuplicates = 5
	colExported   = 6
	colOutcome    = 7
	colNote       = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colInput] = e.Input
	row[colLoaded] = strconv.Itoa(e.RowsLoaded)
	row[colDropped] = strconv.Itoa(e.RowsDropped)
	row[colDuplicates] = strconv.Itoa(e.DuplicatesRemoved)
	row[colExported] = strconv.Itoa(e.RowsExported)
	row[colOutcome] = e.Outcome
	row[colNote] = e.Note
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

	counts := make([]int, 4)
	for i, col := range []int{colLoaded, colDropped, colDuplicates, colExported} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp:         ts,
		RunID:             record[colRunID],
		Input:             record[colInput],
		RowsLoaded:        counts[0],
		RowsDropped:       counts[1],
		DuplicatesRemoved: counts[2],
		RowsExported:      counts[3],
		Outcome:           record[colOutcome],
		Note:              record[colNote],
	}, nil
}

// Append writes e to the log at path, creating the file and header if needed.
func Append(path string, e Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
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

	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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
