package frame

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/txclean/internal/model"
	"github.com/cleared-dev/txclean/internal/splitter"
)

func newBuilder() *Builder {
	return NewBuilder(splitter.Default(), nil, zerolog.Nop())
}

func TestReadTestdata(t *testing.T) {
	res, err := newBuilder().ReadFile("../../testdata/transactions.csv")
	require.NoError(t, err)

	tbl := res.Table
	assert.Equal(t, []string{"Transaction ID", "Date", "Transaction Amount", "Merchant Name", "Category"}, tbl.Columns)
	assert.Equal(t, 11, tbl.Len())
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 10, res.Dropped[0].Line)
	assert.Equal(t, 2, res.Dropped[0].Fields)

	for i, row := range tbl.Rows {
		assert.Len(t, row, len(tbl.Columns), "row %d width", i)
	}

	assert.Equal(t, "$1,250.00", tbl.Rows[0][2].Text)
	assert.Equal(t, "Grocer, Downtown", tbl.Rows[7][3].Text)
}

func TestMissingTokensNormalized(t *testing.T) {
	input := "a,b,c,d,e\nNA,N/A,NULL,,keep\n"
	res, err := newBuilder().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())

	row := res.Table.Rows[0]
	for i := 0; i < 4; i++ {
		assert.True(t, row[i].IsNull(), "column %d should be null", i)
	}
	assert.Equal(t, model.Text("keep"), row[4])
}

func TestCustomMissingTokens(t *testing.T) {
	b := NewBuilder(splitter.Default(), []string{"-"}, zerolog.Nop())
	res, err := b.Read(strings.NewReader("a,b\n-,NA\n"))
	require.NoError(t, err)
	assert.True(t, res.Table.Rows[0][0].IsNull())
	assert.Equal(t, "NA", res.Table.Rows[0][1].Text)
}

func TestDroppedRowIsLogged(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(splitter.Default(), nil, zerolog.New(&buf))

	res, err := b.Read(strings.NewReader("a,b\n1,2\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 3, res.Dropped[0].Line)
	assert.Contains(t, buf.String(), "dropping malformed row")
	assert.Contains(t, buf.String(), `"row":"1,2,3"`)
}

func TestEmptyInput(t *testing.T) {
	_, err := newBuilder().Read(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestHeaderOnly(t *testing.T) {
	res, err := newBuilder().Read(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.Len())
	assert.Empty(t, res.Dropped)
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newBuilder()
	first, err := b.ReadFile("../../testdata/transactions.csv")
	require.NoError(t, err)

	var lines []Line
	for i, rec := range first.Table.Records() {
		lines = append(lines, Line{Number: i + 2, Text: quoted(rec)})
	}

	second := b.Build(first.Table.Columns, lines)
	assert.Empty(t, second.Dropped)
	assert.True(t, first.Table.Equal(second.Table))
}

func quoted(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = `"` + f + `"`
	}
	return strings.Join(out, ",")
}

func TestReadFileNotFound(t *testing.T) {
	_, err := newBuilder().ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening input")
}
