package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/cli/commands"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := &cobra.Command{
		Use:   "setests",
		Short: "Selenium Grid browser test runner",
		Long: `Run the Chrome, Edge and Firefox browser tests against a Selenium Grid in parallel,
rerunning failures once, and extract the SE_* variables used by the image scripts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetArgs(args)

	// Flags are populated by cobra; the env is filled in once they are parsed
	var flags cli.Flags
	env := &commands.Env{Out: os.Stdout, Err: os.Stderr}

	cmds := commands.NewCommands(env)
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}
