package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/txclean/internal/config"
	"github.com/cleared-dev/txclean/internal/logger"
	"github.com/cleared-dev/txclean/internal/report"
	"github.com/cleared-dev/txclean/internal/runlog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input = filepath.Join("..", "..", "testdata", "transactions.csv")
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.RunLog = filepath.Join(dir, "logs", "run-log.csv")
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	res, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 11, res.Original.Len())
	assert.Equal(t, 10, res.Cleaned.Len())
	assert.Len(t, res.Dropped, 1)
	assert.Equal(t, 1, res.Stats.DuplicatesRemoved)
	assert.Equal(t, report.MsgModified, res.MutationCheck)
	require.Len(t, res.Written, 4)

	cleaned := readCSV(t, filepath.Join(cfg.Output.Dir, "cleaned_transactions.csv"))
	assert.Len(t, cleaned, 11)
	assert.Equal(t, []string{"Transaction ID", "Date", "Transaction Amount", "Merchant Name", "Category"}, cleaned[0])

	daily := readCSV(t, filepath.Join(cfg.Output.Dir, "daily_aggregated_transactions.csv"))
	require.Len(t, daily, 8)
	assert.Equal(t, []string{"Date", "Total Transaction Amount"}, daily[0])
	assert.Equal(t, "2024-01-01", daily[1][0])
	total, err := strconv.ParseFloat(daily[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1285.1, total, 1e-6)

	weekly := readCSV(t, filepath.Join(cfg.Output.Dir, "weekly_aggregated_transactions.csv"))
	assert.Len(t, weekly, 5)
	assert.Equal(t, "2024-W01", weekly[1][0])

	monthly := readCSV(t, filepath.Join(cfg.Output.Dir, "monthly_aggregated_transactions.csv"))
	require.Len(t, monthly, 3)
	jan, err := strconv.ParseFloat(monthly[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1557.55, jan, 1e-6)

	text := out.String()
	assert.Contains(t, text, "First 11 rows:")
	assert.Contains(t, text, "Duplicate rows removed: 1")
	assert.Contains(t, text, report.MsgModified)
}

func TestRunAppendsRunLog(t *testing.T) {
	cfg := testConfig(t)

	first, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	entries, err := runlog.Read(cfg.Output.RunLog)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.RunID, entries[0].RunID)
	assert.Equal(t, 11, entries[0].RowsLoaded)
	assert.Equal(t, 1, entries[0].RowsDropped)
	assert.Equal(t, 1, entries[0].DuplicatesRemoved)
	assert.Equal(t, 10, entries[0].RowsExported)
	assert.Equal(t, OutcomeOK, entries[0].Outcome)
	assert.Empty(t, entries[0].Note)
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, strings.Count(err.Error(), cfg.Input), "input path appears once: %v", err)

	entries, err := runlog.Read(cfg.Output.RunLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, OutcomeError, entries[0].Outcome)
	assert.Zero(t, entries[0].RowsLoaded)
}

func TestRunMissingColumn(t *testing.T) {
	cfg := testConfig(t)
	cfg.Columns.Amount = "Amount"

	_, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleaning")
}

func TestRunLegacyMutationCheck(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.LegacyMutationCheck = true
	cfg.Report.PreviewRows = 0

	var logs, out bytes.Buffer
	ctx := logger.WithContext(context.Background(), zerolog.New(&logs))

	res, err := Run(ctx, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, report.MsgLegacyDifferent, res.MutationCheck)
	assert.NotContains(t, out.String(), "First")
	assert.Contains(t, logs.String(), "legacy_mutation_check")
	assert.Contains(t, logs.String(), res.RunID)

	entries, err := runlog.Read(cfg.Output.RunLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, NoteLegacyMutationCheck, entries[0].Note)
}

func TestRunWorkbook(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Workbook = "report.xlsx"

	res, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, res.Written, filepath.Join(cfg.Output.Dir, "report.xlsx"))
}
