package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/webdriver"
)

var customCapabilities = []struct{ name, value string }{
	{"myApp:version", "beta"},
	{"myApp:publish", "internal"},
}

// Fixture opens and closes the grid session around every case
type Fixture struct {
	cfg      *config.Config
	client   *webdriver.Client
	logger   *slog.Logger
	sites    Sites
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// FixtureOption configures a Fixture
type FixtureOption func(*Fixture)

// WithSites points the scenarios at other copies of the demo pages
func WithSites(sites Sites) FixtureOption {
	return func(f *Fixture) {
		f.sites = sites
	}
}

// WithPollInterval sets how often scenario waits poll the browser
func WithPollInterval(d time.Duration) FixtureOption {
	return func(f *Fixture) {
		f.interval = d
	}
}

// NewFixture creates a fixture creating sessions through client
func NewFixture(cfg *config.Config, client *webdriver.Client, logger *slog.Logger, opts ...FixtureOption) *Fixture {
	f := &Fixture{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		sites:    DefaultSites,
		interval: webdriver.DefaultPollInterval,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixture) browser(sess *webdriver.Session) *Browser {
	return &Browser{
		Session:  sess,
		cfg:      f.cfg,
		sites:    f.sites,
		interval: f.interval,
		sleep:    f.sleep,
	}
}

// NewClient creates a WebDriver client for the grid described by cfg
func NewClient(cfg *config.Config) *webdriver.Client {
	opts := []webdriver.ClientOption{webdriver.WithSessionRate(cfg.SessionRate)}
	if cfg.Grid.Username != "" {
		opts = append(opts, webdriver.WithBasicAuth(cfg.Grid.Username, cfg.Grid.Password))
	}
	return webdriver.NewClient(cfg.Grid.URL(), opts...)
}

// Setup starts a session for caseName. Errors are logged and returned as is;
// the fixture never retries.
func (f *Fixture) Setup(ctx context.Context, kind Kind, caseName string) (*webdriver.Session, error) {
	start := time.Now()
	sess, err := f.client.NewSession(ctx, Capabilities(f.cfg, kind, caseName))
	if err != nil {
		f.logger.Error("webdriver initialization failed",
			"test", caseName,
			"browser", string(kind),
			"grid", f.client.BaseURL(),
			"error", err,
		)
		return nil, fmt.Errorf("setup %s: %w", caseName, err)
	}

	f.logger.Info(fmt.Sprintf("Begin: %s WebDriver initialization completed in %s", caseName, time.Since(start)),
		"session", sess.ID,
	)
	return sess, nil
}

// Teardown verifies the returned capabilities when custom capabilities are
// on, waits the configured delay and quits the session. The session is quit
// even when the capability check fails.
func (f *Fixture) Teardown(ctx context.Context, caseName string, sess *webdriver.Session) ([]string, error) {
	var failures []string
	if f.cfg.CustomCapabilities {
		for _, c := range customCapabilities {
			got, _ := sess.Capability(c.name)
			if err := expectEqual("capability "+c.name, c.value, fmt.Sprint(got)); err != nil {
				failures = append(failures, err.Error())
			}
		}
	}

	var delayErr error
	if f.cfg.DelayAfterTest > 0 {
		delayErr = f.sleep(ctx, f.cfg.DelayAfterTest)
	}

	// the grid slot is released even if the case was cancelled
	if err := sess.Quit(context.WithoutCancel(ctx)); err != nil {
		f.logger.Error("quitting session failed", "test", caseName, "session", sess.ID, "error", err)
		return failures, fmt.Errorf("teardown %s: %w", caseName, err)
	}
	if delayErr != nil {
		f.logger.Error("delay after test interrupted", "test", caseName, "error", delayErr)
		return failures, fmt.Errorf("teardown %s: %w", caseName, delayErr)
	}
	return failures, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
