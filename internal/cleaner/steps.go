package cleaner

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/txclean/internal/model"
)

// ParseAmount strips pattern matches from s and parses the rest as a number.
func ParseAmount(s string, strip *regexp.Regexp) (float64, bool) {
	if strip != nil {
		s = strip.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// CoerceAmounts converts text cells in column col to numbers. Text that does
// not parse becomes null. Numbers and nulls are left alone.
func CoerceAmounts(t *model.Table, col int, strip *regexp.Regexp) (failed int) {
	for _, r := range t.Rows {
		if r[col].Kind != model.KindText {
			continue
		}
		if f, ok := ParseAmount(r[col].Text, strip); ok {
			r[col] = model.Number(f)
		} else {
			r[col] = model.Null()
			failed++
		}
	}
	return failed
}

// CoerceDates parses text cells in column col with layout. Text that does
// not parse becomes null.
func CoerceDates(t *model.Table, col int, layout string) (failed int) {
	for _, r := range t.Rows {
		if r[col].Kind != model.KindText {
			continue
		}
		d, err := time.Parse(layout, r[col].Text)
		if err != nil {
			r[col] = model.Null()
			failed++
			continue
		}
		r[col] = model.Date(d)
	}
	return failed
}

// InterpolateAmounts fills null numbers by linear interpolation over row order.
// Interior gaps lie on the line between their neighbours, trailing nulls take
// the last value, leading nulls stay null.
func InterpolateAmounts(t *model.Table, col int) (filled int) {
	prev := -1
	for i, r := range t.Rows {
		if r[col].Kind != model.KindNumber {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := t.Rows[prev][col].Number, r[col].Number
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				t.Rows[j][col] = model.Number(lo + (hi-lo)*float64(j-prev)/span)
				filled++
			}
		}
		prev = i
	}
	if prev < 0 {
		return filled
	}
	last := t.Rows[prev][col]
	for j := prev + 1; j < len(t.Rows); j++ {
		t.Rows[j][col] = last
		filled++
	}
	return filled
}

// Mean averages the numeric cells of column col. ok is false when there are none.
func Mean(t *model.Table, col int) (mean float64, ok bool) {
	var sum float64
	n := 0
	for _, r := range t.Rows {
		if r[col].Kind == model.KindNumber {
			sum += r[col].Number
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// FillNulls replaces every null in column col with v.
func FillNulls(t *model.Table, col int, v model.Cell) (filled int) {
	for _, r := range t.Rows {
		if r[col].IsNull() {
			r[col] = v
			filled++
		}
	}
	return filled
}

// ForwardFill replaces each null in column col with the nearest preceding
// non-null value. Leading nulls stay null.
func ForwardFill(t *model.Table, col int) (filled int) {
	last := model.Null()
	for _, r := range t.Rows {
		if r[col].IsNull() {
			if !last.IsNull() {
				r[col] = last
				filled++
			}
			continue
		}
		last = r[col]
	}
	return filled
}

// DropDuplicates removes rows identical to an earlier row, keeping the first.
func DropDuplicates(t *model.Table) (removed int) {
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		k := r.Key()
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		kept = append(kept, r)
	}
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return removed
}

// Percentile returns the q-quantile (0..1) of values using linear
// interpolation between closest ranks. It panics on an empty slice.
func Percentile(values []float64, q float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	pos := q * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}

// Winsorize caps numbers in column col above the q-quantile to that quantile.
// It returns the cap and how many cells were capped.
func Winsorize(t *model.Table, col int, q float64) (limit float64, capped int) {
	var values []float64
	for _, r := range t.Rows {
		if r[col].Kind == model.KindNumber {
			values = append(values, r[col].Number)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	limit = Percentile(values, q)
	for _, r := range t.Rows {
		if r[col].Kind == model.KindNumber && r[col].Number > limit {
			r[col] = model.Number(limit)
			capped++
		}
	}
	return limit, capped
}
