package browser

import (
	"fmt"
	"strings"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
)

// Kind identifies a browser by its W3C browserName
type Kind string

const (
	Chrome  Kind = "chrome"
	Edge    Kind = "MicrosoftEdge"
	Firefox Kind = "firefox"
)

// GroupName returns the name of the test group driving this browser
func (k Kind) GroupName() string {
	switch k {
	case Chrome:
		return "ChromeTests"
	case Edge:
		return "EdgeTests"
	case Firefox:
		return "FirefoxTests"
	}
	return string(k) + "Tests"
}

// ParseKind accepts browser names as typed on the command line
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome":
		return Chrome, nil
	case "edge", "microsoftedge":
		return Edge, nil
	case "firefox":
		return Firefox, nil
	}
	return "", fmt.Errorf("unknown browser %q (want chrome, edge or firefox)", name)
}

const (
	screenResolution = "1920x1080"
	acceptLanguages  = "vi-VN,vi"
	// Keeps the download bubble from swallowing clicks when the grid does not manage downloads
	disableDownloadBubble = "disable-features=DownloadBubble,DownloadBubbleV2"
	relayTimeoutMillis    = 120000
)

// Capabilities builds the session request for kind. caseName is reported to
// the grid as se:name so recordings can be matched to cases.
func Capabilities(cfg *config.Config, kind Kind, caseName string) map[string]any {
	caps := map[string]any{
		"browserName":         string(kind),
		"se:name":             caseName,
		"se:screenResolution": screenResolution,
		"se:downloadsEnabled": cfg.ManagedDownloads,
	}
	if cfg.RecordVideo {
		caps["se:recordVideo"] = true
	}
	if cfg.CustomCapabilities {
		caps["myApp:version"] = "beta"
		caps["myApp:publish"] = "internal"
	}

	switch kind {
	case Chrome:
		caps["goog:chromeOptions"] = map[string]any{"args": chromiumArgs(cfg)}
		if cfg.RelayEnabled() {
			for k, v := range relayCapabilities(cfg) {
				caps[k] = v
			}
		} else {
			caps["platformName"] = "Linux"
		}
	case Edge:
		caps["ms:edgeOptions"] = map[string]any{"args": chromiumArgs(cfg)}
	case Firefox:
		caps["moz:firefoxOptions"] = firefoxOptions(cfg)
	}
	return caps
}

func chromiumArgs(cfg *config.Config) []string {
	args := []string{}
	if !cfg.ManagedDownloads {
		args = append(args, disableDownloadBubble)
	}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	return args
}

func firefoxOptions(cfg *config.Config) map[string]any {
	prefs := map[string]any{
		"intl.accept_languages": acceptLanguages,
		"intl.locale.requested": acceptLanguages,
	}
	if !cfg.ManagedDownloads {
		prefs["browser.download.manager.showWhenStarting"] = false
		prefs["browser.helperApps.neverAsk.saveToDisk"] = "*/*"
	}
	args := []string{}
	if cfg.Headless {
		args = append(args, "-headless")
	}
	return map[string]any{"prefs": prefs, "args": args}
}

// relayCapabilities routes a Chrome session to an Appium node behind the grid relay
func relayCapabilities(cfg *config.Config) map[string]any {
	return map[string]any{
		"platformName":                            strings.ReplaceAll(cfg.NodeRelay, "Headless", ""),
		"appium:platformVersion":                  cfg.AndroidPlatformAPI,
		"appium:automationName":                   "uiautomator2",
		"appium:browserName":                      "chrome",
		"appium:adbExecTimeout":                   relayTimeoutMillis,
		"appium:uiautomator2ServerInstallTimeout": relayTimeoutMillis,
		"appium:appWaitDuration":                  relayTimeoutMillis,
		"appium:suppressKillServer":               true,
		"appium:allowDelayAdb":                    true,
	}
}
