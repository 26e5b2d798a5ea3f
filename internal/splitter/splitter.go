// Package splitter turns raw CSV lines into fields.
//
// The quote character is a plain toggle: it switches delimiter
// interpretation off and on and is never part of a field. Doubled quotes
// are not an escape. A line with an unbalanced quote absorbs everything
// after the last toggle into its final field.
package splitter

import "strings"

// Splitter splits lines on Delimiter outside of Quote spans.
type Splitter struct {
	Delimiter rune
	Quote     rune
}

// Default returns the comma / double-quote splitter.
func Default() Splitter {
	return Splitter{Delimiter: ',', Quote: '"'}
}

// Split returns the trimmed fields of line.
func (s Splitter) Split(line string) []string {
	var fields []string
	var cur strings.Builder
	quoted := false

	for _, r := range line {
		switch {
		case r == s.Quote:
			quoted = !quoted
		case r == s.Delimiter && !quoted:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// Split splits line with the default splitter.
func Split(line string) []string {
	return Default().Split(line)
}
