// Package export writes the cleaned table and its aggregates to disk.
//
// CSV files hold the cleaned table (its own header) and one file per
// aggregate with a period column and "Total Transaction Amount". Numbers
// are written in shortest round-trip form, dates as YYYY-MM-DD and nulls as
// empty fields. An optional xlsx workbook carries the same four tables.
package export

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/txclean/internal/model"
)

// Paths are the export destinations. An empty Workbook skips the xlsx export.
type Paths struct {
	Cleaned  string
	Daily    string
	Weekly   string
	Monthly  string
	Workbook string
}

// Exporter writes every output of a run.
type Exporter struct {
	paths Paths
	log   zerolog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(paths Paths, log zerolog.Logger) *Exporter {
	return &Exporter{paths: paths, log: log}
}

// Export writes the cleaned table and the aggregates. The first failure stops
// the export and is returned.
func (e *Exporter) Export(t *model.Table, aggs []model.Aggregate) ([]string, error) {
	if err := WriteTableFile(e.paths.Cleaned, t); err != nil {
		return nil, err
	}
	written := []string{e.paths.Cleaned}
	e.log.Info().Str("path", e.paths.Cleaned).Int("rows", t.Len()).Msg("wrote cleaned table")

	for _, agg := range aggs {
		path, err := e.pathFor(agg.Granularity)
		if err != nil {
			return written, err
		}
		if err := WriteAggregateFile(path, agg); err != nil {
			return written, err
		}
		written = append(written, path)
		e.log.Info().
			Str("path", path).
			Str("granularity", string(agg.Granularity)).
			Int("periods", len(agg.Totals)).
			Msg("wrote aggregate")
	}

	if e.paths.Workbook != "" {
		if err := WriteWorkbook(e.paths.Workbook, t, aggs); err != nil {
			return written, err
		}
		written = append(written, e.paths.Workbook)
		e.log.Info().Str("path", e.paths.Workbook).Msg("wrote workbook")
	}
	return written, nil
}

func (e *Exporter) pathFor(g model.Granularity) (string, error) {
	switch g {
	case model.GranularityDay:
		return e.paths.Daily, nil
	case model.GranularityWeek:
		return e.paths.Weekly, nil
	case model.GranularityMonth:
		return e.paths.Monthly, nil
	}
	return "", fmt.Errorf("no destination for granularity %q", g)
}
