package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
	"github.com/jbolsens-legion/docker-selenium/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	env *Env
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(env *Env) *HistoryCommand {
	return &HistoryCommand{env: env}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	flags := hc.env.Config.Flags
	if flags.HistoryDSN == "" {
		return cli.NewExitError(cli.ExitUsage, errors.New("--history-dsn is required"))
	}

	history, err := storage.OpenHistory(cmd.Context(), flags.HistoryDriver, flags.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()

	cases, err := history.Cases(cmd.Context())
	if err != nil {
		return err
	}
	ui.NewFormatter(hc.env.Out).PrintHistory(cases)
	return nil
}
