package model

// Granularity is the period size an Aggregate groups by.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// TotalColumn is the header of the summed column in every aggregate export.
const TotalColumn = "Total Transaction Amount"

// KeyColumn returns the export header for the period column.
func (g Granularity) KeyColumn() string {
	switch g {
	case GranularityWeek:
		return "Week"
	case GranularityMonth:
		return "Month"
	}
	return "Date"
}

// PeriodTotal is one group of an Aggregate.
type PeriodTotal struct {
	Period string
	Total  float64
	Rows   int
}

// Aggregate holds the per-period totals for one granularity, ascending by period.
type Aggregate struct {
	Granularity Granularity
	Totals      []PeriodTotal
}

// Sum adds up every period total.
func (a Aggregate) Sum() float64 {
	var s float64
	for _, p := range a.Totals {
		s += p.Total
	}
	return s
}
