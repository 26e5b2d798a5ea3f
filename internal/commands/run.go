package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/txclean/internal/config"
	"github.com/cleared-dev/txclean/internal/logger"
	"github.com/cleared-dev/txclean/internal/pipeline"
)

type runFlags struct {
	configPath string
	outDir     string
	preview    int
	legacy     bool
	workbook   string
}

func newRunCommand() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Clean a transaction CSV and export the aggregates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, args, f)
			if err != nil {
				return err
			}

			log, err := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, logger.Format(cfg.Logging.Format))
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), log)

			_, err = pipeline.Run(ctx, cfg, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", config.FileName, "config file, defaults apply when missing")
	cmd.Flags().StringVar(&f.outDir, "out", "", "output directory")
	cmd.Flags().IntVar(&f.preview, "preview", 0, "number of loaded rows to print")
	cmd.Flags().BoolVar(&f.legacy, "legacy-mutation-check", false, "print the legacy wording of the final mutation check")
	cmd.Flags().StringVar(&f.workbook, "workbook", "", "also write an xlsx workbook to this path")

	return cmd
}

// loadRunConfig layers defaults, the config file, TXCLEAN_* variables and
// flags, in that order.
func loadRunConfig(cmd *cobra.Command, args []string, f runFlags) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := loadConfig(f.configPath, flags.Changed("config"))
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if flags.Changed("out") {
		cfg.Output.Dir = f.outDir
	}
	if flags.Changed("preview") {
		cfg.Report.PreviewRows = f.preview
	}
	if flags.Changed("legacy-mutation-check") {
		cfg.Report.LegacyMutationCheck = f.legacy
	}
	if flags.Changed("workbook") {
		cfg.Output.Workbook = f.workbook
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfig reads path, required when explicit, rebases its relative paths
// onto the file's directory and applies TXCLEAN_* overrides.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if explicit {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, err
	}
	cfg.Rebase(filepath.Dir(path))

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
