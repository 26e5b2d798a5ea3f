package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/txclean/internal/model"
	"github.com/cleared-dev/txclean/internal/period"
)

// WeekStartColumn is the extra Weekly sheet column holding each week's Monday.
const WeekStartColumn = "Week Start"

// Sheet names used in the workbook export.
const (
	SheetCleaned = "Cleaned"
	SheetDaily   = "Daily"
	SheetWeekly  = "Weekly"
	SheetMonthly = "Monthly"
)

var aggregateSheets = map[model.Granularity]string{
	model.GranularityDay:   SheetDaily,
	model.GranularityWeek:  SheetWeekly,
	model.GranularityMonth: SheetMonthly,
}

// WriteWorkbook writes the cleaned table and every aggregate into one xlsx
// file, one sheet each. Numbers keep their cell type. The Weekly sheet also
// carries the first day of each ISO week.
func WriteWorkbook(path string, t *model.Table, aggs []model.Aggregate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCleaned); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := setRow(f, SheetCleaned, 1, stringsToCells(t.Columns)); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err := setRow(f, SheetCleaned, i+2, rowCells(r)); err != nil {
			return err
		}
	}

	for _, agg := range aggs {
		sheet, ok := aggregateSheets[agg.Granularity]
		if !ok {
			return fmt.Errorf("no sheet for granularity %q", agg.Granularity)
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		if err := setRow(f, sheet, 1, stringsToCells(sheetHeader(agg))); err != nil {
			return err
		}
		for i, p := range agg.Totals {
			row, err := sheetRow(agg.Granularity, p)
			if err != nil {
				return err
			}
			if err := setRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func sheetHeader(agg model.Aggregate) []string {
	header := AggregateHeader(agg)
	if agg.Granularity == model.GranularityWeek {
		header = append(header, WeekStartColumn)
	}
	return header
}

func sheetRow(g model.Granularity, p model.PeriodTotal) ([]any, error) {
	if g != model.GranularityWeek {
		return []any{p.Period, p.Total}, nil
	}
	year, week, err := period.ParseWeek(p.Period)
	if err != nil {
		return nil, fmt.Errorf("weekly sheet: %w", err)
	}
	return []any{p.Period, p.Total, period.FormatDay(period.WeekStart(year, week))}, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

func stringsToCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func rowCells(r model.Row) []any {
	out := make([]any, len(r))
	for i, c := range r {
		switch c.Kind {
		case model.KindNumber:
			out[i] = c.Number
		case model.KindDate:
			out[i] = c.Date
		case model.KindText:
			out[i] = c.Text
		default:
			out[i] = nil
		}
	}
	return out
}
