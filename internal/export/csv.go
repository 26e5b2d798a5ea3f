package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cleared-dev/txclean/internal/model"
)

// WriteTable writes the table, header first, to w.
func WriteTable(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range t.Records() {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate writes a period/total table to w.
func WriteAggregate(w io.Writer, agg model.Aggregate) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(AggregateHeader(agg)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range agg.Totals {
		if err := cw.Write(MarshalPeriod(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AggregateHeader returns the two export columns for agg.
func AggregateHeader(agg model.Aggregate) []string {
	return []string{agg.Granularity.KeyColumn(), model.TotalColumn}
}

// MarshalPeriod converts a PeriodTotal to a CSV row.
func MarshalPeriod(p model.PeriodTotal) []string {
	return []string{p.Period, strconv.FormatFloat(p.Total, 'f', -1, 64)}
}

// WriteTableFile writes t to path, creating parent directories.
func WriteTableFile(path string, t *model.Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteTable(w, t) })
}

// WriteAggregateFile writes agg to path, creating parent directories.
func WriteAggregateFile(path string, agg model.Aggregate) error {
	return writeFile(path, func(w io.Writer) error { return WriteAggregate(w, agg) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
