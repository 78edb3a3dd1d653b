package browser

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/domain"
	"github.com/jbolsens-legion/docker-selenium/internal/execution"
	"github.com/jbolsens-legion/docker-selenium/internal/webdriver"
	"github.com/jbolsens-legion/docker-selenium/internal/webdriver/webdrivertest"
)

type node = webdrivertest.Node

func locate(by ...webdriver.By) []webdriver.By { return by }

// newInternet serves the demo pages the scenarios visit from the fake grid
func newInternet(t *testing.T) (*webdrivertest.Server, Sites) {
	t.Helper()
	srv := webdrivertest.NewServer()
	t.Cleanup(srv.Close)

	sites := Sites{
		Internet:       srv.URL,
		StreamTester:   srv.URL + "/stream-tester",
		LanguageDetect: srv.URL + "/detect-browser-language",
		AfterLanguage:  srv.URL + "/google",
	}

	srv.Pages[srv.URL] = &webdrivertest.Page{Title: "The Internet"}

	middle := &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByID("content")), Text: "MIDDLE"},
	}}
	top := &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByName("frame-left"))},
		{Locators: locate(webdriver.ByName("frame-middle")), Frame: middle},
	}}
	srv.Pages[srv.URL+"/nested_frames"] = &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByName("frame-top")), Frame: top},
	}}

	option := locate(webdriver.ByTagName("option"))
	srv.Pages[srv.URL+"/dropdown"] = &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByID("dropdown")), Children: []*node{
			{Tag: "option", Locators: option, Text: "Please select an option", Selected: true, Disabled: true},
			{Tag: "option", Locators: option, Text: "Option 1"},
			{Tag: "option", Locators: option, Text: "Option 2"},
		}},
	}}

	authURL := "http://admin:admin@" + srv.Listener.Addr().String() + "/basic_auth"
	srv.Pages[authURL] = &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByCSS(".example p")), Text: "Congratulations! You must have the proper credentials."},
	}}

	video := &node{
		Locators:   locate(webdriver.ByTagName("video")),
		Properties: map[string]any{"currentTime": 0, "paused": true},
	}
	srv.Pages[sites.StreamTester] = &webdrivertest.Page{Elements: []*node{
		video,
		{
			Locators: locate(webdriver.ByTagName("flowplayer-play-icon")),
			OnClick: func(*webdrivertest.Server) {
				video.Properties["currentTime"] = 0.42
				video.Properties["paused"] = false
			},
		},
	}}

	srv.Pages[srv.URL+"/download"] = &webdrivertest.Page{Elements: []*node{
		{
			Locators: locate(webdriver.ByLinkText("some-file.txt")),
			OnClick: func(s *webdrivertest.Server) {
				s.Downloads = append(s.Downloads, "0f3c-some-file.txt")
			},
		},
	}}

	srv.Pages[sites.LanguageDetect] = &webdrivertest.Page{Elements: []*node{
		{Locators: locate(webdriver.ByXPath(`(//*[@class="notranslate"])[1]`)), Text: "vi-VN"},
	}}
	return srv, sites
}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return nil
}

func (r *sleepRecorder) durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.calls...)
}

func newTestFixture(cfg *config.Config, srv *webdrivertest.Server, sites Sites) (*Fixture, *sleepRecorder, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	f := NewFixture(cfg, webdriver.NewClient(srv.URL), logger,
		WithSites(sites),
		WithPollInterval(time.Millisecond),
	)
	rec := &sleepRecorder{}
	f.sleep = rec.sleep
	return f, rec, &logs
}

func findCase(t *testing.T, g domain.TestGroup, scenario string) domain.TestCase {
	t.Helper()
	for _, c := range g.Cases() {
		if c.(*Case).scenario.Name == scenario {
			return c
		}
	}
	t.Fatalf("no scenario %s in %s", scenario, g.Name())
	return nil
}

func TestCase_ScenariosPass(t *testing.T) {
	for _, kind := range []Kind{Chrome, Edge, Firefox} {
		t.Run(string(kind), func(t *testing.T) {
			srv, sites := newInternet(t)
			fixture, _, _ := newTestFixture(config.New(), srv, sites)

			cases := NewGroup(kind, fixture, "").Cases()
			for _, c := range cases {
				res := c.Run(context.Background())
				assert.True(t, res.Successful(), "%s: failures=%v err=%v", c.Name(), res.Failures, res.Err)
			}
			assert.Equal(t, len(cases), srv.SessionCount())
			assert.Equal(t, len(cases), srv.QuitCount())
		})
	}
}

func TestCase_SessionCarriesCaseName(t *testing.T) {
	srv, sites := newInternet(t)
	fixture, _, logs := newTestFixture(config.New(), srv, sites)

	c := findCase(t, NewGroup(Chrome, fixture, ""), "TestTitle")
	assert.Equal(t, "TestTitle (ChromeTests)", c.Name())
	require.True(t, c.Run(context.Background()).Successful())

	assert.Equal(t, "TestTitle (ChromeTests)", srv.LastCapabilities()["se:name"])
	assert.Contains(t, logs.String(), "Begin: TestTitle (ChromeTests) WebDriver initialization completed in")
}

func TestCase_AssertionFailure(t *testing.T) {
	srv, sites := newInternet(t)
	srv.Pages[srv.URL].Title = "Welcome"
	fixture, _, _ := newTestFixture(config.New(), srv, sites)

	res := findCase(t, NewGroup(Firefox, fixture, ""), "TestTitleAndMaximizeWindow").Run(context.Background())

	assert.NoError(t, res.Err)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], `want The Internet, got Welcome`)
	assert.Equal(t, 1, srv.QuitCount(), "session is quit after a failed assertion")
}

func TestCase_ProtocolError(t *testing.T) {
	srv, sites := newInternet(t)
	delete(srv.Pages, srv.URL+"/dropdown")
	fixture, _, _ := newTestFixture(config.New(), srv, sites)

	res := findCase(t, NewGroup(Edge, fixture, ""), "TestSelectFromADropdown").Run(context.Background())

	assert.ErrorIs(t, res.Err, webdriver.ErrNoSuchElement)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 1, srv.QuitCount())
}

func TestCase_SetupError(t *testing.T) {
	srv, sites := newInternet(t)
	srv.SessionError = "session not created"
	fixture, _, logs := newTestFixture(config.New(), srv, sites)

	res := findCase(t, NewGroup(Chrome, fixture, ""), "TestTitle").Run(context.Background())

	assert.ErrorIs(t, res.Err, webdriver.ErrSessionNotCreated)
	assert.Contains(t, res.Err.Error(), "setup TestTitle (ChromeTests)")
	assert.Equal(t, 1, srv.SessionCount(), "setup is not retried")
	assert.Equal(t, 0, srv.QuitCount())
	assert.Contains(t, logs.String(), "webdriver initialization failed")
}

func TestCase_CustomCapabilities(t *testing.T) {
	cfg := config.New()
	cfg.CustomCapabilities = true

	t.Run("echoed by the grid", func(t *testing.T) {
		srv, sites := newInternet(t)
		fixture, _, _ := newTestFixture(cfg, srv, sites)
		res := findCase(t, NewGroup(Chrome, fixture, ""), "TestTitle").Run(context.Background())
		assert.True(t, res.Successful(), "%v %v", res.Failures, res.Err)
	})

	t.Run("dropped by the grid", func(t *testing.T) {
		srv, sites := newInternet(t)
		srv.ReturnedCaps["myApp:publish"] = "public"
		fixture, _, _ := newTestFixture(cfg, srv, sites)

		res := findCase(t, NewGroup(Chrome, fixture, ""), "TestTitle").Run(context.Background())
		assert.NoError(t, res.Err)
		require.Len(t, res.Failures, 1)
		assert.Contains(t, res.Failures[0], "myApp:publish")
		assert.Equal(t, 1, srv.QuitCount())
	})
}

func TestCase_DelayAfterTest(t *testing.T) {
	cfg := config.New()
	cfg.DelayAfterTest = 3 * time.Second
	srv, sites := newInternet(t)
	fixture, rec, _ := newTestFixture(cfg, srv, sites)

	require.True(t, findCase(t, NewGroup(Chrome, fixture, ""), "TestTitle").Run(context.Background()).Successful())
	assert.Equal(t, []time.Duration{3 * time.Second}, rec.durations())
}

func TestCase_DownloadWithoutManagedDownloads(t *testing.T) {
	cfg := config.New()
	cfg.ManagedDownloads = false
	srv, sites := newInternet(t)
	fixture, rec, _ := newTestFixture(cfg, srv, sites)

	res := findCase(t, NewGroup(Chrome, fixture, ""), "TestDownloadFile").Run(context.Background())
	require.True(t, res.Successful(), "%v %v", res.Failures, res.Err)
	assert.Equal(t, []time.Duration{4 * time.Second}, rec.durations())

	srv.Lock()
	defer srv.Unlock()
	assert.Len(t, srv.Scripts, 1)
	assert.Equal(t, "arguments[0].scrollIntoView();", srv.Scripts[0])
}

func TestCase_AcceptLanguagesInstallsLangPack(t *testing.T) {
	xpi := filepath.Join(t.TempDir(), "langpack-vi@firefox.mozilla.org.xpi")
	require.NoError(t, os.WriteFile(xpi, []byte("xpi"), 0644))

	cfg := config.New()
	cfg.FirefoxInstallLangPack = true
	cfg.FirefoxLangPackPath = xpi
	srv, sites := newInternet(t)
	fixture, rec, _ := newTestFixture(cfg, srv, sites)

	res := findCase(t, NewGroup(Firefox, fixture, ""), "TestAcceptLanguages").Run(context.Background())
	require.True(t, res.Successful(), "%v %v", res.Failures, res.Err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.durations())

	srv.Lock()
	defer srv.Unlock()
	assert.Len(t, srv.Addons, 1)
}

func TestCase_AcceptLanguagesWrongLocale(t *testing.T) {
	srv, sites := newInternet(t)
	srv.Pages[sites.LanguageDetect].Elements[0].Text = "en-US"
	fixture, _, _ := newTestFixture(config.New(), srv, sites)

	res := findCase(t, NewGroup(Firefox, fixture, ""), "TestAcceptLanguages").Run(context.Background())
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], "Language code should be vi-VN")
}

func TestCase_PanicQuitsSession(t *testing.T) {
	srv, sites := newInternet(t)
	fixture, _, _ := newTestFixture(config.New(), srv, sites)

	c := &Case{
		group:   "ChromeTests",
		kind:    Chrome,
		fixture: fixture,
		scenario: Scenario{Name: "TestBoom", Run: func(context.Context, *Browser) error {
			panic("boom")
		}},
	}

	assert.Panics(t, func() { c.Run(context.Background()) }, "the panic is passed on to the runner")
	assert.Equal(t, 1, srv.SessionCount())
	assert.Equal(t, 1, srv.QuitCount())

	res := execution.NewRunner().Run(context.Background(), c, 1, time.Now())
	assert.False(t, res.Passed)
	assert.Contains(t, res.Error, "TestBoom (ChromeTests)")
	assert.Contains(t, res.Error, "panic: boom")
	assert.Equal(t, 2, srv.QuitCount())
}
