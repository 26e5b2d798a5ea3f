package model

import (
	"strconv"
	"time"
)

// DateFormat is the layout dates are rendered with in exports and keys.
const DateFormat = "2006-01-02"

// Kind identifies what a Cell holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is one value in a Table. The zero Cell is null.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Date   time.Time
}

// Null returns the missing-value marker.
func Null() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: KindNumber, Number: f} }

// Date returns a date cell truncated to midnight UTC.
func Date(t time.Time) Cell {
	y, m, d := t.Date()
	return Cell{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsNull reports whether c is the missing-value marker.
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String renders the cell the way it is written to CSV. Null renders empty.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Date.Format(DateFormat)
	}
	return ""
}

// Equal compares kind and value. Two nulls are equal.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == o.Text
	case KindNumber:
		return c.Number == o.Number
	case KindDate:
		return c.Date.Equal(o.Date)
	}
	return true
}

// key is a kind-tagged rendering used for duplicate detection.
func (c Cell) key() string {
	switch c.Kind {
	case KindText:
		return "t:" + c.Text
	case KindNumber:
		return "n:" + strconv.FormatFloat(c.Number, 'g', -1, 64)
	case KindDate:
		return "d:" + c.Date.Format(DateFormat)
	}
	return "-"
}
