// Package cleaner repairs a freshly built transaction table in place.
//
// Clean runs six ordered stages over the amount and date columns:
//
//  1. strip currency symbols and coerce amounts to numbers
//  2. interpolate missing amounts, then fill what is left with the mean
//  3. drop exact duplicate rows
//  4. re-coerce amounts and parse dates; failures become null
//  5. fill null amounts with the mean and forward-fill null dates
//  6. cap amounts above a percentile
//
// Each stage is also exported on its own so it can be exercised in isolation.
// Coercion never fails the run: bad values turn into nulls and the next fill
// stage repairs them.
package cleaner

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/txclean/internal/model"
)

// ErrMissingColumn is returned when a configured column is not in the table.
var ErrMissingColumn = errors.New("column not found")

// Options names the columns to clean and the cleaning parameters.
type Options struct {
	AmountColumn    string
	DateColumn      string
	DateLayout      string
	CurrencyPattern string
	CapPercentile   float64
}

// DefaultOptions matches the credit card transaction export.
func DefaultOptions() Options {
	return Options{
		AmountColumn:    "Transaction Amount",
		DateColumn:      "Date",
		DateLayout:      "2-1-2006",
		CurrencyPattern: `[$,]`,
		CapPercentile:   0.99,
	}
}

// Stage is the row and column count after a pipeline stage.
type Stage struct {
	Name    string
	Rows    int
	Columns int
}

// Stats describes what Clean did.
type Stats struct {
	Stages            []Stage
	AmountsUnparsed   int
	Interpolated      int
	MeanFilled        int
	DuplicatesRemoved int
	DatesUnparsed     int
	// NullCounts and NullRows are captured right after re-coercion, before
	// the second fill.
	NullCounts   []model.ColumnCount
	NullRows     *model.Table
	DatesFilled  int
	CapLimit     float64
	CapsApplied  int
	MeanFallback bool
}

// Cleaner applies the cleaning stages.
type Cleaner struct {
	opts  Options
	strip *regexp.Regexp
	log   zerolog.Logger
}

// New validates opts and compiles the currency pattern.
func New(opts Options, log zerolog.Logger) (*Cleaner, error) {
	if opts.CapPercentile <= 0 || opts.CapPercentile > 1 {
		return nil, fmt.Errorf("cap percentile %v out of range (0, 1]", opts.CapPercentile)
	}
	strip, err := regexp.Compile(opts.CurrencyPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling currency pattern: %w", err)
	}
	return &Cleaner{opts: opts, strip: strip, log: log}, nil
}

// Clean runs every stage on t in order.
func (c *Cleaner) Clean(t *model.Table) (Stats, error) {
	amount, ok := t.ColumnIndex(c.opts.AmountColumn)
	if !ok {
		return Stats{}, fmt.Errorf("amount column %q: %w", c.opts.AmountColumn, ErrMissingColumn)
	}
	date, ok := t.ColumnIndex(c.opts.DateColumn)
	if !ok {
		return Stats{}, fmt.Errorf("date column %q: %w", c.opts.DateColumn, ErrMissingColumn)
	}

	var st Stats
	st.stage("loaded", t)

	st.AmountsUnparsed = CoerceAmounts(t, amount, c.strip)
	st.Interpolated = InterpolateAmounts(t, amount)
	st.MeanFilled = c.fillMean(t, amount, &st)
	st.stage("interpolated", t)
	c.log.Debug().
		Int("unparsed", st.AmountsUnparsed).
		Int("interpolated", st.Interpolated).
		Int("mean_filled", st.MeanFilled).
		Msg("amounts prepared")

	st.DuplicatesRemoved = DropDuplicates(t)
	st.stage("deduplicated", t)
	c.log.Debug().Int("removed", st.DuplicatesRemoved).Msg("duplicates dropped")

	st.AmountsUnparsed += CoerceAmounts(t, amount, c.strip)
	st.DatesUnparsed = CoerceDates(t, date, c.opts.DateLayout)
	st.NullCounts = t.NullCounts()
	st.NullRows = t.RowsWithNull()

	st.MeanFilled += c.fillMean(t, amount, &st)
	st.DatesFilled = ForwardFill(t, date)
	st.stage("filled", t)
	c.log.Debug().
		Int("dates_unparsed", st.DatesUnparsed).
		Int("dates_filled", st.DatesFilled).
		Msg("formats repaired")

	st.CapLimit, st.CapsApplied = Winsorize(t, amount, c.opts.CapPercentile)
	c.log.Debug().
		Float64("limit", st.CapLimit).
		Int("capped", st.CapsApplied).
		Msg("outliers capped")

	return st, nil
}

func (c *Cleaner) fillMean(t *model.Table, col int, st *Stats) int {
	mean, ok := Mean(t, col)
	if !ok {
		if t.Len() > 0 {
			c.log.Warn().Str("column", c.opts.AmountColumn).Msg("no numeric amounts, filling with 0")
			st.MeanFallback = true
		}
		mean = 0
	}
	return FillNulls(t, col, model.Number(mean))
}

func (st *Stats) stage(name string, t *model.Table) {
	st.Stages = append(st.Stages, Stage{Name: name, Rows: t.Len(), Columns: len(t.Columns)})
}
