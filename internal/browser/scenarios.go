package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/webdriver"
)

// Sites are the public pages the scenarios exercise
type Sites struct {
	Internet       string
	StreamTester   string
	LanguageDetect string
	AfterLanguage  string
}

// DefaultSites points the scenarios at the public demo pages
var DefaultSites = Sites{
	Internet:       "https://the-internet.herokuapp.com",
	StreamTester:   "https://docs.flowplayer.com/tools/stream-tester",
	LanguageDetect: "https://gtranslate.io/detect-browser-language",
	AfterLanguage:  "https://google.com",
}

const (
	internetTitle    = "The Internet"
	basicAuthMessage = "Congratulations! You must have the proper credentials."
	downloadFileName = "some-file.txt"
	downloadTimeout  = 30 * time.Second
	acceptedLanguage = "vi-VN"
	scrollIntoView   = "arguments[0].scrollIntoView();"
)

// Browser is what a scenario drives: the live session plus the run settings
type Browser struct {
	*webdriver.Session
	cfg      *config.Config
	sites    Sites
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func (b *Browser) wait(timeout time.Duration) *webdriver.Wait {
	return &webdriver.Wait{Timeout: timeout, Interval: b.interval}
}

func (b *Browser) page(path string) string {
	return strings.TrimRight(b.sites.Internet, "/") + path
}

// Scenario is one browser test method
type Scenario struct {
	Name string
	Run  func(ctx context.Context, b *Browser) error
}

// Scenarios returns the scenarios run against kind, in declaration order
func Scenarios(kind Kind) []Scenario {
	scenarios := []Scenario{
		{Name: "TestTitle", Run: testTitle},
		{Name: "TestWithFrames", Run: testWithFrames},
		{Name: "TestSelectFromADropdown", Run: testSelectFromADropdown},
		{Name: "TestVisitBasicAuthSecuredPage", Run: testVisitBasicAuthSecuredPage},
		{Name: "TestPlayVideo", Run: testPlayVideo},
		{Name: "TestDownloadFile", Run: testDownloadFile},
	}
	if kind == Firefox {
		scenarios = append(scenarios,
			Scenario{Name: "TestTitleAndMaximizeWindow", Run: testTitleAndMaximizeWindow},
			Scenario{Name: "TestAcceptLanguages", Run: testAcceptLanguages},
		)
	}
	return scenarios
}

func testTitle(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.page("")); err != nil {
		return err
	}
	title, err := b.Title(ctx)
	if err != nil {
		return err
	}
	return expectEqual("page title", internetTitle, title)
}

func testWithFrames(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.page("/nested_frames")); err != nil {
		return err
	}
	wait := b.wait(b.cfg.WaitTimeout)
	for _, frame := range []string{"frame-top", "frame-middle"} {
		if err := wait.Until(ctx, webdriver.FrameAvailable(b.Session, frame)); err != nil {
			return fmt.Errorf("switching to %s: %w", frame, err)
		}
	}
	content, err := b.FindElement(ctx, webdriver.ByID("content"))
	if err != nil {
		return err
	}
	text, err := content.Text(ctx)
	if err != nil {
		return err
	}
	return expectEqual("content should be MIDDLE", "MIDDLE", text)
}

func testSelectFromADropdown(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.page("/dropdown")); err != nil {
		return err
	}
	dropdown, err := b.FindElement(ctx, webdriver.ByID("dropdown"))
	if err != nil {
		return err
	}
	options, err := dropdown.FindElements(ctx, webdriver.ByTagName("option"))
	if err != nil {
		return err
	}

	for _, opt := range options {
		text, err := opt.Text(ctx)
		if err != nil {
			return err
		}
		if text == "Option 1" {
			if err := opt.Click(ctx); err != nil {
				return err
			}
			break
		}
	}

	selected := ""
	for _, opt := range options {
		ok, err := opt.IsSelected(ctx)
		if err != nil {
			return err
		}
		if ok {
			if selected, err = opt.Text(ctx); err != nil {
				return err
			}
			break
		}
	}
	return expectEqual("selected option", "Option 1", selected)
}

func testVisitBasicAuthSecuredPage(ctx context.Context, b *Browser) error {
	u, err := url.Parse(b.page("/basic_auth"))
	if err != nil {
		return err
	}
	u.User = url.UserPassword("admin", "admin")
	if err := b.Navigate(ctx, u.String()); err != nil {
		return err
	}
	p, err := b.FindElement(ctx, webdriver.ByCSS(".example p"))
	if err != nil {
		return err
	}
	text, err := p.Text(ctx)
	if err != nil {
		return err
	}
	return expectEqual("page message", basicAuthMessage, text)
}

func testPlayVideo(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.sites.StreamTester); err != nil {
		return err
	}
	wait := b.wait(b.cfg.WaitTimeout)

	var play *webdriver.Element
	if err := wait.Until(ctx, webdriver.ElementClickable(b.Session, webdriver.ByTagName("flowplayer-play-icon"), &play)); err != nil {
		return fmt.Errorf("waiting for play button: %w", err)
	}
	if err := play.Click(ctx); err != nil {
		return err
	}
	if err := b.sleep(ctx, time.Second); err != nil {
		return err
	}

	if err := wait.Until(ctx, videoProperty(b, "currentTime", truthy)); err != nil {
		return fmt.Errorf("waiting for playback: %w", err)
	}
	notPaused := func(r gjson.Result) bool { return r.Type == gjson.False }
	if err := wait.Until(ctx, videoProperty(b, "paused", notPaused)); err != nil {
		return fmt.Errorf("waiting for video to play: %w", err)
	}

	video, err := b.FindElement(ctx, webdriver.ByTagName("video"))
	if err != nil {
		return err
	}
	paused, err := video.Property(ctx, "paused")
	if err != nil {
		return err
	}
	return expectEqual("video paused", false, paused.Bool())
}

func videoProperty(b *Browser, name string, accept func(gjson.Result) bool) webdriver.Condition {
	return func(ctx context.Context) (bool, error) {
		video, err := b.FindElement(ctx, webdriver.ByTagName("video"))
		if err != nil {
			return false, err
		}
		v, err := video.Property(ctx, name)
		if err != nil {
			return false, err
		}
		return accept(v), nil
	}
}

// truthy follows JavaScript truthiness for the JSON value types
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	}
	return false
}

func testDownloadFile(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.page("/download")); err != nil {
		return err
	}
	wait := b.wait(downloadTimeout)

	var link *webdriver.Element
	if err := wait.Until(ctx, webdriver.ElementClickable(b.Session, webdriver.ByLinkText(downloadFileName), &link)); err != nil {
		return fmt.Errorf("waiting for download link: %w", err)
	}
	if _, err := b.ExecuteScript(ctx, scrollIntoView, link); err != nil {
		return err
	}
	if err := link.Click(ctx); err != nil {
		return err
	}

	if !b.cfg.ManagedDownloads {
		return b.sleep(ctx, 4*time.Second)
	}

	var names []string
	err := wait.Until(ctx, func(ctx context.Context) (bool, error) {
		var err error
		names, err = b.DownloadableFiles(ctx)
		if err != nil {
			return false, err
		}
		return hasSuffix(names, downloadFileName), nil
	})
	var timeout *webdriver.TimeoutError
	if errors.As(err, &timeout) {
		return &AssertionError{Message: "downloaded files", Want: "*" + downloadFileName, Got: names}
	}
	return err
}

func hasSuffix(names []string, suffix string) bool {
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			return true
		}
	}
	return false
}

func testTitleAndMaximizeWindow(ctx context.Context, b *Browser) error {
	if err := b.Navigate(ctx, b.page("")); err != nil {
		return err
	}
	if err := b.MaximizeWindow(ctx); err != nil {
		return err
	}
	title, err := b.Title(ctx)
	if err != nil {
		return err
	}
	return expectEqual("page title", internetTitle, title)
}

func testAcceptLanguages(ctx context.Context, b *Browser) error {
	if b.cfg.FirefoxInstallLangPack {
		if _, err := b.InstallAddon(ctx, b.cfg.FirefoxLangPackPath, false); err != nil {
			return fmt.Errorf("installing language pack: %w", err)
		}
	}
	if err := b.Navigate(ctx, b.sites.LanguageDetect); err != nil {
		return err
	}

	var code *webdriver.Element
	locator := webdriver.ByXPath(`(//*[@class="notranslate"])[1]`)
	if err := b.wait(b.cfg.WaitTimeout).Until(ctx, webdriver.ElementPresent(b.Session, locator, &code)); err != nil {
		return fmt.Errorf("waiting for language code: %w", err)
	}
	if _, err := b.ExecuteScript(ctx, scrollIntoView, code); err != nil {
		return err
	}
	text, err := code.Text(ctx)
	if err != nil {
		return err
	}
	if err := expectEqual("Language code should be vi-VN", acceptedLanguage, text); err != nil {
		return err
	}

	if err := b.sleep(ctx, time.Second); err != nil {
		return err
	}
	if err := b.Navigate(ctx, b.sites.AfterLanguage); err != nil {
		return err
	}
	return b.sleep(ctx, 2*time.Second)
}
