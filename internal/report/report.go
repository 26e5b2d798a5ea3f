// Package report prints the human-facing summary of a cleaning run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/txclean/internal/cleaner"
	"github.com/cleared-dev/txclean/internal/model"
)

// Mutation check messages.
const (
	MsgUnchanged = "original data unchanged"
	MsgModified  = "original data modified"
	// Legacy wording prints the modified text in both branches, and the
	// error form when the data is equal.
	MsgLegacyEqual     = "error: original data modified!"
	MsgLegacyDifferent = "original data modified."
)

// Reporter writes run summaries to w.
type Reporter struct {
	w      io.Writer
	legacy bool
	log    zerolog.Logger
}

// New creates a Reporter. legacy selects the inverted mutation check wording.
func New(w io.Writer, legacy bool, log zerolog.Logger) *Reporter {
	return &Reporter{w: w, legacy: legacy, log: log}
}

// Preview prints the first n rows as "column: value, ..." lines.
func (r *Reporter) Preview(t *model.Table, n int) {
	if n <= 0 || t.Len() == 0 {
		return
	}
	if n > t.Len() {
		n = t.Len()
	}
	fmt.Fprintf(r.w, "First %d rows:\n", n)
	for _, row := range t.Rows[:n] {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			parts[i] = col + ": " + row[i].String()
		}
		fmt.Fprintln(r.w, strings.Join(parts, ", "))
	}
	fmt.Fprintln(r.w)
}

// Dropped prints how many malformed lines the loader skipped.
func (r *Reporter) Dropped(n int) {
	if n == 0 {
		return
	}
	fmt.Fprintf(r.w, "Malformed lines dropped: %d\n", n)
}

// Stats prints stage shapes, the duplicate count and the null diagnostics.
func (r *Reporter) Stats(s cleaner.Stats) {
	for _, st := range s.Stages {
		fmt.Fprintf(r.w, "Shape after %s: (%d, %d)\n", st.Name, st.Rows, st.Columns)
	}
	fmt.Fprintf(r.w, "Duplicate rows removed: %d\n", s.DuplicatesRemoved)

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Missing values after format fixes:")
	for _, c := range s.NullCounts {
		fmt.Fprintf(r.w, "  %s: %d\n", c.Column, c.Count)
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Rows with missing values:")
	if s.NullRows == nil || s.NullRows.Len() == 0 {
		fmt.Fprintln(r.w, "  (none)")
	} else {
		fmt.Fprintln(r.w, "  "+strings.Join(s.NullRows.Columns, " | "))
		for _, rec := range s.NullRows.Records() {
			fmt.Fprintln(r.w, "  "+strings.Join(rec, " | "))
		}
	}

	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "Outliers capped at %s (%d rows)\n", formatAmount(s.CapLimit), s.CapsApplied)
}

// Summary prints the completion lines.
func (r *Reporter) Summary(written []string) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Cleaning report:")
	fmt.Fprintln(r.w, "Missing values interpolated and filled.")
	fmt.Fprintln(r.w, "Format errors repaired.")
	fmt.Fprintln(r.w, "Outliers capped.")
	fmt.Fprintln(r.w, "Data aggregated by day, week and month and exported:")
	for _, p := range written {
		fmt.Fprintf(r.w, "  %s\n", p)
	}
}

// MutationCheck compares the untouched copy with the cleaned table, prints
// the verdict and returns it.
func (r *Reporter) MutationCheck(original, cleaned *model.Table) string {
	msg := CheckMessage(original.Equal(cleaned), r.legacy)
	if r.legacy {
		r.log.Warn().
			Str("flag", "legacy_mutation_check").
			Str("message", msg).
			Msg("mutation check uses inverted legacy wording")
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, msg)
	return msg
}

// CheckMessage returns the mutation check text for an equality result.
func CheckMessage(equal, legacy bool) string {
	switch {
	case legacy && equal:
		return MsgLegacyEqual
	case legacy:
		return MsgLegacyDifferent
	case equal:
		return MsgUnchanged
	default:
		return MsgModified
	}
}

func formatAmount(f float64) string {
	return model.Number(f).String()
}
