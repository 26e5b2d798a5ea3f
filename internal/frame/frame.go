// Package frame assembles split CSV lines into a model.Table.
package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/txclean/internal/model"
	"github.com/cleared-dev/txclean/internal/splitter"
)

// ErrEmptyInput is returned when the input has no header line.
var ErrEmptyInput = errors.New("input has no header line")

// DefaultMissingTokens are the field values normalized to null.
var DefaultMissingTokens = []string{"NA", "N/A", "NULL", ""}

const maxLineBytes = 16 << 20

// Line is one raw data line with its 1-based position in the input.
type Line struct {
	Number int
	Text   string
}

// Dropped describes a line excluded for a field-count mismatch.
type Dropped struct {
	Line   int
	Fields int
	Text   string
}

// Result is the outcome of building a table.
type Result struct {
	Table   *model.Table
	Dropped []Dropped
}

// Builder turns header and data lines into a Table.
type Builder struct {
	splitter splitter.Splitter
	missing  map[string]bool
	log      zerolog.Logger
}

// NewBuilder creates a Builder. A nil missing list means DefaultMissingTokens.
func NewBuilder(s splitter.Splitter, missing []string, log zerolog.Logger) *Builder {
	if missing == nil {
		missing = DefaultMissingTokens
	}
	m := make(map[string]bool, len(missing))
	for _, tok := range missing {
		m[tok] = true
	}
	return &Builder{splitter: s, missing: m, log: log}
}

// Build keeps rows whose field count equals len(header) and normalizes
// missing-value tokens to null.
func (b *Builder) Build(header []string, lines []Line) Result {
	res := Result{Table: model.NewTable(header)}
	for _, ln := range lines {
		fields := b.splitter.Split(ln.Text)
		if len(fields) != len(header) {
			b.log.Warn().
				Int("line", ln.Number).
				Int("fields", len(fields)).
				Int("expected", len(header)).
				Str("row", ln.Text).
				Msg("dropping malformed row")
			res.Dropped = append(res.Dropped, Dropped{Line: ln.Number, Fields: len(fields), Text: ln.Text})
			continue
		}
		res.Table.Rows = append(res.Table.Rows, b.row(fields))
	}
	return res
}

func (b *Builder) row(fields []string) model.Row {
	row := make(model.Row, len(fields))
	for i, f := range fields {
		if b.missing[f] {
			row[i] = model.Null()
			continue
		}
		row[i] = model.Text(f)
	}
	return row
}

// Read builds a table from r. The first line is the header.
func (b *Builder) Read(r io.Reader) (Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Result{}, fmt.Errorf("reading header: %w", err)
		}
		return Result{}, ErrEmptyInput
	}
	header := b.splitter.Split(sc.Text())

	var lines []Line
	n := 1
	for sc.Scan() {
		n++
		lines = append(lines, Line{Number: n, Text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		return Result{}, fmt.Errorf("reading line %d: %w", n+1, err)
	}

	return b.Build(header, lines), nil
}

// ReadFile opens path and builds a table from it.
func (b *Builder) ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	res, err := b.Read(f)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return res, nil
}
