package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/envvars"
)

// EnvVarsCommand handles the envvars command
type EnvVarsCommand struct {
	env *Env
}

// NewEnvVarsCommand creates a new EnvVarsCommand
func NewEnvVarsCommand(env *Env) *EnvVarsCommand {
	return &EnvVarsCommand{env: env}
}

// Execute writes the manifest once, then keeps it current in watch mode
func (ec *EnvVarsCommand) Execute(cmd *cobra.Command, args []string) error {
	dir, output := args[0], args[1]
	flags := ec.env.Flags

	scanner := envvars.NewScanner(flags.SkipDirs)
	names, err := envvars.Extract(scanner, dir, output)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(ec.env.Out, "Wrote %d variable(s) to %s\n", len(names), output)

	if !flags.Watch {
		return nil
	}
	return envvars.NewWatcher(scanner, dir, output, ec.env.Logger).Run(cmd.Context())
}
