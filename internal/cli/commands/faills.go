package commands

import (
	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/storage"
	"github.com/jbolsens-legion/docker-selenium/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	env *Env
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(env *Env) *FaillsCommand {
	return &FaillsCommand{env: env}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	st := storage.NewJSONStorage(fc.env.Config)
	results, err := st.Load()
	if err != nil {
		return err
	}

	return ui.NewErrorViewer(st, fc.env.Out).View(results)
}
