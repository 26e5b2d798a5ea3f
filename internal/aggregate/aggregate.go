// Package aggregate sums cleaned transaction amounts per day, ISO week and month.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/txclean/internal/model"
	"github.com/cleared-dev/txclean/internal/period"
)

// Result holds the three aggregates of one run.
type Result struct {
	Daily   model.Aggregate
	Weekly  model.Aggregate
	Monthly model.Aggregate
	// Undated counts rows skipped because their date is null.
	Undated int
}

// All returns the aggregates in day, week, month order.
func (r Result) All() []model.Aggregate {
	return []model.Aggregate{r.Daily, r.Weekly, r.Monthly}
}

var labelers = map[model.Granularity]func(time.Time) string{
	model.GranularityDay:   period.FormatDay,
	model.GranularityWeek:  period.FormatWeek,
	model.GranularityMonth: period.FormatMonth,
}

// Build groups t by the date column and sums the amount column per period.
func Build(t *model.Table, dateColumn, amountColumn string) (Result, error) {
	dateCol, ok := t.ColumnIndex(dateColumn)
	if !ok {
		return Result{}, fmt.Errorf("date column %q not found", dateColumn)
	}
	amountCol, ok := t.ColumnIndex(amountColumn)
	if !ok {
		return Result{}, fmt.Errorf("amount column %q not found", amountColumn)
	}

	var res Result
	for _, r := range t.Rows {
		if r[dateCol].Kind != model.KindDate {
			res.Undated++
		}
	}

	res.Daily = By(t, dateCol, amountCol, model.GranularityDay)
	res.Weekly = By(t, dateCol, amountCol, model.GranularityWeek)
	res.Monthly = By(t, dateCol, amountCol, model.GranularityMonth)
	return res, nil
}

// By sums numeric amounts per period of granularity g. Rows without a date
// or without a numeric amount contribute nothing.
func By(t *model.Table, dateCol, amountCol int, g model.Granularity) model.Aggregate {
	label := labelers[g]

	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, r := range t.Rows {
		d, a := r[dateCol], r[amountCol]
		if d.Kind != model.KindDate || a.Kind != model.KindNumber {
			continue
		}
		key := label(d.Date)
		sums[key] = sums[key].Add(decimal.NewFromFloat(a.Number))
		counts[key]++
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	agg := model.Aggregate{Granularity: g, Totals: make([]model.PeriodTotal, len(keys))}
	for i, k := range keys {
		agg.Totals[i] = model.PeriodTotal{
			Period: k,
			Total:  sums[k].InexactFloat64(),
			Rows:   counts[k],
		}
	}
	return agg
}
