package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jbolsens-legion/docker-selenium/internal/browser"
	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/logging"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
)

// Env is what every command runs with. It is filled in once flags are parsed.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Flags  *cli.Flags
	Out    io.Writer
	Err    io.Writer

	// FixtureOptions are passed to every browser fixture
	FixtureOptions []browser.FixtureOption
}

// Commands holds all CLI commands
type Commands struct {
	env *Env

	Run     *RunCommand
	List    *ListCommand
	Faills  *FaillsCommand
	History *HistoryCommand
	EnvVars *EnvVarsCommand
}

// NewCommands creates all commands sharing env
func NewCommands(env *Env) *Commands {
	return &Commands{
		env:     env,
		Run:     NewRunCommand(env),
		List:    NewListCommand(env),
		Faills:  NewFaillsCommand(env),
		History: NewHistoryCommand(env),
		EnvVars: NewEnvVarsCommand(env),
	}
}

// Setup loads the configuration and logger from the parsed root flags. A
// config already present in the env is kept; only flags are applied to it.
func (c *Commands) Setup(flags *cli.Flags) error {
	c.SetupLogger(flags)
	if c.env.Config == nil {
		cfg, err := config.Load(flags.EnvFile, nil)
		if err != nil {
			return cli.NewExitError(cli.ExitConfig, fmt.Errorf("invalid configuration: %w", err))
		}
		c.env.Config = cfg
	}
	flags.Apply(c.env.Config)
	return nil
}

// SetupLogger builds only the logger. Commands that never read the grid
// configuration use it so a bad browser setting cannot fail them.
func (c *Commands) SetupLogger(flags *cli.Flags) {
	c.env.Flags = flags
	if c.env.Logger == nil {
		c.env.Logger = logging.New(flags.LogLevel, flags.LogFormat, c.env.Err)
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", config.DefaultEnvFile, "Env file read before the environment (environment wins)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flags.OutputDir, "output-dir", "", "Directory of the results file (default "+config.DefaultOutputJSONDir+")")
	rootCmd.PersistentFlags().StringVar(&flags.OutputFile, "output-file", "", "Name of the results file (default "+config.DefaultOutputJSONFile+")")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.Setup(flags)
	}
	rootCmd.SetFlagErrorFunc(cli.UsageFlagError)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the browser tests against a Selenium Grid",
		Long:  "Shuffle every browser test case, run them in parallel against the grid, then rerun the failures once, one at a time",
		Args:  cli.UsageArgs(cobra.NoArgs),
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of parallel workers (0 runs every case at once)")
	runCmd.Flags().Uint64Var(&flags.Seed, "seed", 0, "Shuffle seed (0 picks a random one)")
	runCmd.Flags().StringSliceVarP(&flags.Browsers, "browsers", "b", nil, "Only run these browsers (chrome, edge, firefox)")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test cases by name pattern (supports wildcards, e.g., '*(ChromeTests)' or '*Download*')")
	runCmd.Flags().BoolVar(&flags.FailOnFlaky, "fail-on-flaky", false, "Exit with code 2 when a case passed only on rerun")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Do not show the progress bar")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().StringVar(&flags.HistoryDriver, "history-driver", storage.DriverSQLite, "Run history database driver (mysql, sqlite3)")
	runCmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "Run history database DSN; history is not recorded when empty")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the browser test cases",
		Long:  "List every test case the run command would execute on this platform, grouped by browser",
		Args:  cli.UsageArgs(cobra.NoArgs),
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringSliceVarP(&flags.Browsers, "browsers", "b", nil, "Only list these browsers (chrome, edge, firefox)")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test cases by name pattern (supports wildcards)")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		Args:  cli.UsageArgs(cobra.NoArgs),
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded run history per test case",
		Long:  "Print how often every test case passed, was flaky or failed across the runs recorded with --history-dsn",
		Args:  cli.UsageArgs(cobra.NoArgs),
		RunE:  c.History.Execute,
	}
	historyCmd.Flags().StringVar(&flags.HistoryDriver, "history-driver", storage.DriverSQLite, "Run history database driver (mysql, sqlite3)")
	historyCmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "Run history database DSN")
	rootCmd.AddCommand(historyCmd)

	// Envvars command
	envVarsCmd := &cobra.Command{
		Use:   "envvars <directory> <output_file>",
		Short: "Write the SE_* variables used by shell scripts to a YAML file",
		Long:  "Scan every .sh file under directory for SE_* variable names and write them, sorted, as YAML keys with empty values",
		Args:  cli.UsageArgs(cobra.ExactArgs(2)),
		RunE:  c.EnvVars.Execute,
	}
	// The extractor does not depend on the grid configuration
	envVarsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.SetupLogger(flags)
		return nil
	}
	envVarsCmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "Regenerate the manifest whenever a script changes")
	envVarsCmd.Flags().StringSliceVar(&flags.SkipDirs, "skip-dir", nil, "Directory names not to descend into")
	rootCmd.AddCommand(envVarsCmd)
}
