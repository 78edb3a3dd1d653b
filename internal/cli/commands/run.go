package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/browser"
	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/discovery"
	"github.com/jbolsens-legion/docker-selenium/internal/domain"
	"github.com/jbolsens-legion/docker-selenium/internal/execution"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
	"github.com/jbolsens-legion/docker-selenium/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	env    *Env
	filter *discovery.Filter
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(env *Env) *RunCommand {
	return &RunCommand{
		env:    env,
		filter: discovery.NewFilter(),
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, logger := rc.env.Config, rc.env.Logger
	ctx := cmd.Context()

	fixture := browser.NewFixture(cfg, browser.NewClient(cfg), logger, rc.env.FixtureOptions...)
	groups, err := browser.Suite(cfg, fixture)
	if err != nil {
		return cli.NewExitError(cli.ExitUsage, err)
	}
	groups = rc.filter.FilterGroups(groups, cfg.Flags.NameFilter)

	total := 0
	for _, g := range groups {
		total += len(g.Cases())
	}
	if total == 0 {
		color.New(color.FgYellow).Fprintln(rc.env.Out, "No tests to execute")
		return nil
	}

	runner := execution.NewRunner()
	pool := execution.NewWorkerPool(cfg.Processors, runner, logger)
	if !cfg.Flags.NoProgress {
		progressBar := ui.NewProgressBarTo(rc.env.Err, total)
		pool.SetProgress(progressBar)
	}
	autoscaling := execution.NewAutoscaling(pool, runner, execution.NewShuffleScheduler(cfg.Flags.Seed), logger)

	report, runErr := autoscaling.Run(ctx, groups)

	st := storage.NewJSONStorage(cfg)
	if err := st.Save(report); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	if cfg.Flags.HistoryDSN != "" {
		if err := rc.record(cmd, report); err != nil {
			// The results file is already written; a history outage does not fail the run
			logger.Error("failed to record run history", "driver", cfg.Flags.HistoryDriver, "error", err)
		}
	}

	output := storage.NewOutput(report)
	ui.NewFormatter(rc.env.Out).PrintSummary(output)

	if runErr != nil {
		if cfg.Flags.OpenFaills {
			if err := ui.NewErrorViewer(st, rc.env.Out).View(output); err != nil {
				logger.Error("faills viewer failed", "error", err)
			}
		}
		var rerunErr *execution.RerunError
		if errors.As(runErr, &rerunErr) {
			return cli.NewExitError(cli.ExitFailures, runErr)
		}
		return runErr
	}

	if flaky := report.Flaky(); cfg.Flags.FailOnFlaky && len(flaky) > 0 {
		return cli.NewExitError(cli.ExitFlaky, fmt.Errorf("%d test case(s) passed only on rerun", len(flaky)))
	}
	return nil
}

func (rc *RunCommand) record(cmd *cobra.Command, report *domain.Report) error {
	cfg := rc.env.Config
	history, err := storage.OpenHistory(cmd.Context(), cfg.Flags.HistoryDriver, cfg.Flags.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()
	return history.Record(cmd.Context(), report)
}
