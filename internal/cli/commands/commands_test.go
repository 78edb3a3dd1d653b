package commands

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jbolsens-legion/docker-selenium/internal/browser"
	"github.com/jbolsens-legion/docker-selenium/internal/cli"
	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/logging"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
	"github.com/jbolsens-legion/docker-selenium/internal/webdriver/webdrivertest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// newEnv returns an env with a fresh config whose results go to a temp dir
func newEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.OutputJSONDir = t.TempDir()

	var out bytes.Buffer
	return &Env{
		Config:         cfg,
		Logger:         logging.Discard(),
		Out:            &out,
		Err:            &out,
		FixtureOptions: []browser.FixtureOption{browser.WithPollInterval(time.Millisecond)},
	}, &out
}

// newGrid serves the title page from a fake grid and points env at it
func newGrid(t *testing.T, env *Env) *webdrivertest.Server {
	t.Helper()
	srv := webdrivertest.NewServer()
	t.Cleanup(srv.Close)
	srv.Pages[browser.DefaultSites.Internet] = &webdrivertest.Page{Title: "The Internet"}

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	env.Config.Grid = config.Grid{Protocol: u.Scheme, Host: u.Hostname(), Port: u.Port()}
	return srv
}

func execute(env *Env, args ...string) error {
	root := &cobra.Command{Use: "setests", SilenceUsage: true, SilenceErrors: true}
	var flags cli.Flags
	NewCommands(env).Register(root, &flags)
	root.SetArgs(args)
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	return root.ExecuteContext(context.Background())
}

func TestRun_Passes(t *testing.T) {
	env, out := newEnv(t)
	srv := newGrid(t, env)
	historyDSN := filepath.Join(t.TempDir(), "history.db")

	err := execute(env, "run", "--no-progress", "--seed", "7",
		"--filter", "TestTitle (ChromeTests)",
		"--history-dsn", historyDSN)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.SessionCount())
	assert.Contains(t, out.String(), "All tests passed!")

	results, err := storage.NewJSONStorage(env.Config).Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), results.Meta.Seed)
	assert.Equal(t, 1, results.Meta.TotalTestCases)
	assert.Equal(t, 1, results.Meta.PassedTestCases)

	out.Reset()
	require.NoError(t, execute(env, "history", "--history-dsn", historyDSN))
	assert.Regexp(t, `TestTitle \(ChromeTests\)\s+1\s+1\s+0\s+0`, out.String())
}

func TestRun_FailsTwice(t *testing.T) {
	env, out := newEnv(t)
	srv := newGrid(t, env)
	srv.SessionError = "session not created"

	err := execute(env, "run", "--no-progress", "--filter", "TestTitle (ChromeTests)")
	assert.Equal(t, cli.ExitFailures, cli.ExitCode(err))
	assert.ErrorContains(t, err, "TestTitle (ChromeTests)")

	assert.Equal(t, 2, srv.SessionCount(), "one parallel attempt and one rerun")
	assert.Contains(t, out.String(), "1 test case(s) failed twice")

	results, err := storage.NewJSONStorage(env.Config).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, results.Meta.FailedTestCases)
	require.Len(t, results.Reruns, 1)
	assert.Equal(t, 2, results.Reruns[0].Attempt)
}

func TestRun_NoTests(t *testing.T) {
	env, out := newEnv(t)

	require.NoError(t, execute(env, "run", "--no-progress", "--filter", "*Safari*"))
	assert.Contains(t, out.String(), "No tests to execute")

	_, err := os.Stat(env.Config.GetOutputPath())
	assert.True(t, os.IsNotExist(err), "no results file is written")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown browser", args: []string{"run", "--browsers", "safari"}},
		{name: "unknown flag", args: []string{"run", "--no-such-flag"}},
		{name: "unexpected argument", args: []string{"list", "extra"}},
		{name: "history without dsn", args: []string{"history"}},
		{name: "envvars arity", args: []string{"envvars", "only-one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newEnv(t)
			err := execute(env, tt.args...)
			assert.Equal(t, cli.ExitUsage, cli.ExitCode(err), "%v", err)
		})
	}
}

func TestSetup_ConfigError(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_PARALLEL_COUNT=many\n"), 0644))
	t.Setenv(config.EnvParallelCount, "")
	os.Unsetenv(config.EnvParallelCount)

	env := &Env{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	err := execute(env, "list", "--env-file", envFile)
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err), "%v", err)
}

func TestList(t *testing.T) {
	env, out := newEnv(t)

	require.NoError(t, execute(env, "list"))
	assert.Contains(t, out.String(), "Found 20 test case(s) in 3 group(s)")

	out.Reset()
	require.NoError(t, execute(env, "list", "--browsers", "firefox", "--filter", "*Languages*"))
	assert.Contains(t, out.String(), "Found 1 test case(s) in 1 group(s)")
	assert.Contains(t, out.String(), "TestAcceptLanguages (FirefoxTests)")
}

func TestEnvVars(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "start.sh"), []byte("FOO=$SE_BROWSER SE_HOST=bar\n"), 0644))
	output := filepath.Join(t.TempDir(), "manifest.yaml")

	env, out := newEnv(t)
	require.NoError(t, execute(env, "envvars", dir, output))
	assert.Contains(t, out.String(), "Wrote 2 variable(s)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	assert.Equal(t, map[string]any{"SE_BROWSER": nil, "SE_HOST": nil}, manifest)
}

func TestEnvVars_IgnoresBrowserConfig(t *testing.T) {
	for _, count := range []string{"abc", "0"} {
		t.Run(count, func(t *testing.T) {
			t.Setenv(config.EnvParallelCount, count)
			t.Setenv(config.EnvParallelHardening, "true")

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "start.sh"), []byte("echo $SE_FOO\n"), 0644))
			output := filepath.Join(t.TempDir(), "manifest.yaml")

			env := &Env{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
			require.NoError(t, execute(env, "envvars", "--env-file", "", dir, output))
			assert.Nil(t, env.Config, "the grid configuration is never loaded")

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			assert.Contains(t, string(data), "SE_FOO")
		})
	}
}

func TestEnvVars_MissingDirectory(t *testing.T) {
	env, _ := newEnv(t)
	err := execute(env, "envvars", filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "out.yaml"))
	assert.Equal(t, cli.ExitFailures, cli.ExitCode(err))
}
