// Package pipeline runs one load, clean, aggregate, export and report pass.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/txclean/internal/aggregate"
	"github.com/cleared-dev/txclean/internal/cleaner"
	"github.com/cleared-dev/txclean/internal/config"
	"github.com/cleared-dev/txclean/internal/export"
	"github.com/cleared-dev/txclean/internal/frame"
	"github.com/cleared-dev/txclean/internal/logger"
	"github.com/cleared-dev/txclean/internal/model"
	"github.com/cleared-dev/txclean/internal/report"
	"github.com/cleared-dev/txclean/internal/runlog"
)

// NoteLegacyMutationCheck is recorded in the run log when the mutation check
// printed its inverted legacy wording.
const NoteLegacyMutationCheck = "legacy_mutation_check: mutation check wording is inverted"

// Outcomes recorded in the run log.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Result is everything a run produced.
type Result struct {
	RunID         string
	Original      *model.Table
	Cleaned       *model.Table
	Dropped       []frame.Dropped
	Stats         cleaner.Stats
	Aggregates    aggregate.Result
	Written       []string
	MutationCheck string
}

// Run executes the pipeline described by cfg. The report goes to out,
// diagnostics to the logger carried by ctx. Every run, failed or not, is
// appended to the run log.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With().Str("run_id", res.RunID).Logger()

	err := run(cfg, out, res, log)

	entry := runlog.Entry{
		Timestamp:         time.Now(),
		RunID:             res.RunID,
		Input:             cfg.Input,
		RowsDropped:       len(res.Dropped),
		DuplicatesRemoved: res.Stats.DuplicatesRemoved,
		Outcome:           OutcomeOK,
	}
	if cfg.Report.LegacyMutationCheck {
		entry.Note = NoteLegacyMutationCheck
	}
	if res.Original != nil {
		entry.RowsLoaded = res.Original.Len()
	}
	if err != nil {
		entry.Outcome = OutcomeError
	} else {
		entry.RowsExported = res.Cleaned.Len()
	}
	if cfg.Output.RunLog != "" {
		if lerr := runlog.Append(cfg.Output.RunLog, entry); lerr != nil {
			log.Warn().Err(lerr).Str("path", cfg.Output.RunLog).Msg("failed to write run log")
		}
	}

	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return res, err
	}
	log.Info().
		Int("rows", res.Cleaned.Len()).
		Int("files", len(res.Written)).
		Msg("run complete")
	return res, nil
}

func run(cfg *config.Config, out io.Writer, res *Result, log zerolog.Logger) error {
	c, err := cleaner.New(cfg.CleanerOptions(), log)
	if err != nil {
		return fmt.Errorf("configuring cleaner: %w", err)
	}

	log.Info().Str("input", cfg.Input).Msg("loading transactions")
	loaded, err := frame.NewBuilder(cfg.Splitter(), cfg.Parse.MissingTokens, log).ReadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	res.Dropped = loaded.Dropped
	res.Original = loaded.Table.Clone()

	rep := report.New(out, cfg.Report.LegacyMutationCheck, log)
	rep.Preview(loaded.Table, cfg.Report.PreviewRows)
	rep.Dropped(len(loaded.Dropped))

	stats, err := c.Clean(loaded.Table)
	if err != nil {
		return fmt.Errorf("cleaning: %w", err)
	}
	res.Stats = stats
	res.Cleaned = loaded.Table
	rep.Stats(stats)

	aggs, err := aggregate.Build(res.Cleaned, cfg.Columns.Date, cfg.Columns.Amount)
	if err != nil {
		return fmt.Errorf("aggregating: %w", err)
	}
	if aggs.Undated > 0 {
		log.Warn().Int("rows", aggs.Undated).Msg("rows without a date left out of aggregates")
	}
	res.Aggregates = aggs

	paths := export.Paths{
		Cleaned:  cfg.Resolve(cfg.Output.Cleaned),
		Daily:    cfg.Resolve(cfg.Output.Daily),
		Weekly:   cfg.Resolve(cfg.Output.Weekly),
		Monthly:  cfg.Resolve(cfg.Output.Monthly),
		Workbook: cfg.Resolve(cfg.Output.Workbook),
	}
	written, err := export.NewExporter(paths, log).Export(res.Cleaned, aggs.All())
	res.Written = written
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	rep.Summary(written)
	res.MutationCheck = rep.MutationCheck(res.Original, res.Cleaned)
	return nil
}
