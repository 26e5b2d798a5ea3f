package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/txclean/internal/config"
	"github.com/cleared-dev/txclean/internal/runlog"
)

func newLogCommand() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show past runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			entries, err := runlog.Read(cfg.Output.RunLog)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded in %s\n", cfg.Output.RunLog)
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-5s  loaded=%d dropped=%d duplicates=%d exported=%d  %s\n",
					e.Timestamp.Local().Format(time.DateTime), e.RunID, e.Outcome,
					e.RowsLoaded, e.RowsDropped, e.DuplicatesRemoved, e.RowsExported, e.Input)
				if e.Note != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    note: %s\n", e.Note)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.FileName, "config file, defaults apply when missing")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent runs")

	return cmd
}
