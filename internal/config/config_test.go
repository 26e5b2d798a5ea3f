package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/txclean/internal/splitter"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input = "in/tx.csv"
	cfg.Output.Workbook = "report.xlsx"
	cfg.Report.LegacyMutationCheck = true
	cfg.Parse.MissingTokens = []string{"-", "?"}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Input, got.Input)
	assert.Equal(t, cfg.Output, got.Output)
	assert.Equal(t, cfg.Columns, got.Columns)
	assert.Equal(t, cfg.Parse, got.Parse)
	assert.InDelta(t, cfg.Clean.CapPercentile, got.Clean.CapPercentile, 0.0001)
	assert.Equal(t, cfg.Clean.DateLayout, got.Clean.DateLayout)
	assert.True(t, got.Report.LegacyMutationCheck)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, filepath.Join("data", "credit_card_transaction_flow.csv"), cfg.Input)
	assert.Equal(t, "cleaned_transactions.csv", cfg.Output.Cleaned)
	assert.Equal(t, "daily_aggregated_transactions.csv", cfg.Output.Daily)
	assert.Equal(t, "weekly_aggregated_transactions.csv", cfg.Output.Weekly)
	assert.Equal(t, "monthly_aggregated_transactions.csv", cfg.Output.Monthly)
	assert.Empty(t, cfg.Output.Workbook)
	assert.Equal(t, "Transaction Amount", cfg.Columns.Amount)
	assert.Equal(t, "Date", cfg.Columns.Date)
	assert.Equal(t, []string{"NA", "N/A", "NULL", ""}, cfg.Parse.MissingTokens)
	assert.InDelta(t, 0.99, cfg.Clean.CapPercentile, 0.0001)
	assert.Equal(t, 20, cfg.Report.PreviewRows)
	assert.False(t, cfg.Report.LegacyMutationCheck)
	require.NoError(t, cfg.Validate())
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("input: other.csv\nclean:\n  cap_percentile: 0.95\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", cfg.Input)
	assert.InDelta(t, 0.95, cfg.Clean.CapPercentile, 0.0001)
	assert.Equal(t, "Transaction Amount", cfg.Columns.Amount)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("input: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "amount: Transaction Amount")
	assert.Contains(t, contents, "cap_percentile: 0.99")
	assert.Contains(t, contents, "legacy_mutation_check: false")
	assert.NotContains(t, contents, "workbook")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TXCLEAN_INPUT", "env.csv")
	t.Setenv("TXCLEAN_OUTPUT_DIR", "env-out")
	t.Setenv("TXCLEAN_LOG_LEVEL", "debug")
	t.Setenv("TXCLEAN_CAP_PERCENTILE", "0.9")
	t.Setenv("TXCLEAN_LEGACY_MUTATION_CHECK", "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "env.csv", cfg.Input)
	assert.Equal(t, "env-out", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.InDelta(t, 0.9, cfg.Clean.CapPercentile, 0.0001)
	assert.True(t, cfg.Report.LegacyMutationCheck)
	assert.Equal(t, "console", cfg.Logging.Format, "unset variables leave values alone")
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("TXCLEAN_CAP_PERCENTILE", "lots")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no input", func(c *Config) { c.Input = "" }},
		{"cap above one", func(c *Config) { c.Clean.CapPercentile = 1.5 }},
		{"cap zero", func(c *Config) { c.Clean.CapPercentile = 0 }},
		{"long delimiter", func(c *Config) { c.Parse.Delimiter = ";;" }},
		{"no amount column", func(c *Config) { c.Columns.Amount = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"negative preview", func(c *Config) { c.Report.PreviewRows = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "exports"
	assert.Equal(t, filepath.Join("exports", "daily.csv"), cfg.Resolve("daily.csv"))

	abs := filepath.Join(t.TempDir(), "daily.csv")
	assert.Equal(t, abs, cfg.Resolve(abs))
	assert.Empty(t, cfg.Resolve(""))
}

func TestCleanerOptions(t *testing.T) {
	cfg := Default()
	cfg.Columns.Amount = "Amount"
	opts := cfg.CleanerOptions()
	assert.Equal(t, "Amount", opts.AmountColumn)
	assert.Equal(t, "Date", opts.DateColumn)
	assert.Equal(t, "2-1-2006", opts.DateLayout)
}

func TestSplitter(t *testing.T) {
	cfg := Default()
	assert.Equal(t, splitter.Default(), cfg.Splitter())

	cfg.Parse.Delimiter = ";"
	cfg.Parse.Quote = "'"
	assert.Equal(t, splitter.Splitter{Delimiter: ';', Quote: '\''}, cfg.Splitter())

	cfg.Parse.Delimiter = ""
	assert.Equal(t, ',', cfg.Splitter().Delimiter)
}

func TestRebase(t *testing.T) {
	cfg := Default()
	abs := filepath.Join(t.TempDir(), "logs", "run.csv")
	cfg.Output.RunLog = abs

	cfg.Rebase("project")
	assert.Equal(t, filepath.Join("project", "data", "credit_card_transaction_flow.csv"), cfg.Input)
	assert.Equal(t, filepath.Join("project", "out"), cfg.Output.Dir)
	assert.Equal(t, abs, cfg.Output.RunLog)
	assert.Equal(t, "cleaned_transactions.csv", cfg.Output.Cleaned)
}
