package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/txclean/internal/cleaner"
	"github.com/cleared-dev/txclean/internal/frame"
	"github.com/cleared-dev/txclean/internal/splitter"
)

// FileName is the default config file name.
const FileName = "txclean.yaml"

// EnvPrefix prefixes every environment override, e.g. TXCLEAN_INPUT.
const EnvPrefix = "TXCLEAN"

// Config represents the top-level txclean.yaml configuration.
type Config struct {
	Input   string        `yaml:"input" validate:"required"`
	Output  OutputConfig  `yaml:"output"`
	Columns ColumnsConfig `yaml:"columns"`
	Parse   ParseConfig   `yaml:"parse"`
	Clean   CleanConfig   `yaml:"clean"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig names the export destinations. Relative file names resolve
// against Dir.
type OutputConfig struct {
	Dir      string `yaml:"dir" validate:"required"`
	Cleaned  string `yaml:"cleaned" validate:"required"`
	Daily    string `yaml:"daily" validate:"required"`
	Weekly   string `yaml:"weekly" validate:"required"`
	Monthly  string `yaml:"monthly" validate:"required"`
	Workbook string `yaml:"workbook,omitempty"` // optional .xlsx with every table
	RunLog   string `yaml:"run_log" validate:"required"`
}

// ColumnsConfig names the columns the cleaner works on.
type ColumnsConfig struct {
	Amount string `yaml:"amount" validate:"required"`
	Date   string `yaml:"date" validate:"required"`
}

// ParseConfig controls the row splitter and frame builder.
type ParseConfig struct {
	Delimiter     string   `yaml:"delimiter" validate:"len=1"`
	Quote         string   `yaml:"quote" validate:"len=1"`
	MissingTokens []string `yaml:"missing_tokens"`
}

// CleanConfig controls coercion and capping.
type CleanConfig struct {
	DateLayout      string  `yaml:"date_layout" validate:"required"` // Go layout, day-month-year
	CurrencyPattern string  `yaml:"currency_pattern" validate:"required"`
	CapPercentile   float64 `yaml:"cap_percentile" validate:"gt=0,lte=1"`
}

// ReportConfig controls the printed report.
type ReportConfig struct {
	PreviewRows int `yaml:"preview_rows" validate:"gte=0"`
	// LegacyMutationCheck prints the historical, inverted wording of the
	// final original-vs-cleaned comparison.
	LegacyMutationCheck bool `yaml:"legacy_mutation_check"`
}

// LoggingConfig controls diagnostics on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	Input               string  `envconfig:"INPUT"`
	OutputDir           string  `envconfig:"OUTPUT_DIR"`
	Workbook            string  `envconfig:"WORKBOOK"`
	LogLevel            string  `envconfig:"LOG_LEVEL"`
	LogFormat           string  `envconfig:"LOG_FORMAT"`
	CapPercentile       float64 `envconfig:"CAP_PERCENTILE"`
	LegacyMutationCheck *bool   `envconfig:"LEGACY_MUTATION_CHECK"`
}

// Load reads a txclean.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the settings of the original credit card export job.
func Default() *Config {
	opts := cleaner.DefaultOptions()
	return &Config{
		Input: filepath.Join("data", "credit_card_transaction_flow.csv"),
		Output: OutputConfig{
			Dir:     "out",
			Cleaned: "cleaned_transactions.csv",
			Daily:   "daily_aggregated_transactions.csv",
			Weekly:  "weekly_aggregated_transactions.csv",
			Monthly: "monthly_aggregated_transactions.csv",
			RunLog:  filepath.Join("logs", "run-log.csv"),
		},
		Columns: ColumnsConfig{
			Amount: opts.AmountColumn,
			Date:   opts.DateColumn,
		},
		Parse: ParseConfig{
			Delimiter:     ",",
			Quote:         `"`,
			MissingTokens: append([]string(nil), frame.DefaultMissingTokens...),
		},
		Clean: CleanConfig{
			DateLayout:      opts.DateLayout,
			CurrencyPattern: opts.CurrencyPattern,
			CapPercentile:   opts.CapPercentile,
		},
		Report: ReportConfig{
			PreviewRows: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overlays TXCLEAN_* environment variables onto cfg.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Input != "" {
		c.Input = env.Input
	}
	if env.OutputDir != "" {
		c.Output.Dir = env.OutputDir
	}
	if env.Workbook != "" {
		c.Output.Workbook = env.Workbook
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Logging.Format = env.LogFormat
	}
	if env.CapPercentile != 0 {
		c.Clean.CapPercentile = env.CapPercentile
	}
	if env.LegacyMutationCheck != nil {
		c.Report.LegacyMutationCheck = *env.LegacyMutationCheck
	}
	return nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve joins a configured output file name with the output directory.
// Absolute names are returned unchanged.
func (c *Config) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// Rebase makes the relative input, output directory and run log paths
// relative to dir. Used for configs loaded from another directory.
func (c *Config) Rebase(dir string) {
	for _, p := range []*string{&c.Input, &c.Output.Dir, &c.Output.RunLog} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// CleanerOptions converts the config into cleaner options.
func (c *Config) CleanerOptions() cleaner.Options {
	return cleaner.Options{
		AmountColumn:    c.Columns.Amount,
		DateColumn:      c.Columns.Date,
		DateLayout:      c.Clean.DateLayout,
		CurrencyPattern: c.Clean.CurrencyPattern,
		CapPercentile:   c.Clean.CapPercentile,
	}
}

// Splitter builds the row splitter from the parse settings. Empty settings
// fall back to comma and double quote.
func (c *Config) Splitter() splitter.Splitter {
	s := splitter.Default()
	if r := []rune(c.Parse.Delimiter); len(r) == 1 {
		s.Delimiter = r[0]
	}
	if r := []rune(c.Parse.Quote); len(r) == 1 {
		s.Quote = r[0]
	}
	return s
}
