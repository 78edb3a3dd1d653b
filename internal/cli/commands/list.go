package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/browser"
	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/discovery"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
	"github.com/jbolsens-legion/docker-selenium/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	env    *Env
	filter *discovery.Filter
}

// NewListCommand creates a new ListCommand
func NewListCommand(env *Env) *ListCommand {
	return &ListCommand{
		env:    env,
		filter: discovery.NewFilter(),
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.env.Config

	// Listing never opens a session, so the cases need no fixture
	groups, err := browser.Suite(cfg, nil)
	if err != nil {
		return cli.NewExitError(cli.ExitUsage, err)
	}
	groups = lc.filter.FilterGroups(groups, cfg.Flags.NameFilter)

	if len(groups) == 0 {
		color.New(color.FgYellow).Fprintln(lc.env.Out, "No tests found")
		return nil
	}

	// Mark the cases that failed twice in the last run, if there is one
	var failed map[string]struct{}
	if last, err := storage.NewJSONStorage(cfg).Load(); err == nil {
		failed = ui.FailedNames(last)
	}

	ui.NewFormatter(lc.env.Out).PrintCaseTree(groups, failed)
	return nil
}
