package config

import "time"

const (
	// DefaultGridProtocol is the scheme used to reach the grid
	DefaultGridProtocol = "http"
	// DefaultGridHost is the grid router host
	DefaultGridHost = "localhost"
	// DefaultGridPort is the grid router port
	DefaultGridPort = "4444"
	// DefaultWaitTimeout is the default explicit wait timeout
	DefaultWaitTimeout = 60 * time.Second
	// DefaultParallelCount is how many times the browser groups are repeated in hardening mode
	DefaultParallelCount = 5
	// DefaultNodeRelay disables the device farm relay
	DefaultNodeRelay = "false"
	// DefaultPlatforms is the platform string of the grid under test
	DefaultPlatforms = "linux/amd64"
	// DefaultFirefoxLangPack is the Vietnamese language pack installed by the accept-languages test
	DefaultFirefoxLangPack = "./target/firefox_lang_packs/langpack-vi@firefox.mozilla.org.xpi"
	// DefaultEnvFile is loaded before the environment is read, if present
	DefaultEnvFile = ".env"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors leaves the worker pool unbounded (one worker per test case)
	DefaultProcessors = 0
)

// Environment variable names read by Load.
const (
	EnvGridProtocol           = "SELENIUM_GRID_PROTOCOL"
	EnvGridHost               = "SELENIUM_GRID_HOST"
	EnvGridPort               = "SELENIUM_GRID_PORT"
	EnvGridUsername           = "SELENIUM_GRID_USERNAME"
	EnvGridPassword           = "SELENIUM_GRID_PASSWORD"
	EnvHeadless               = "SELENIUM_GRID_TEST_HEADLESS"
	EnvManagedDownloads       = "SELENIUM_ENABLE_MANAGED_DOWNLOADS"
	EnvWaitTimeout            = "WEB_DRIVER_WAIT_TIMEOUT"
	EnvParallelHardening      = "TEST_PARALLEL_HARDENING"
	EnvParallelCount          = "TEST_PARALLEL_COUNT"
	EnvDelayAfterTest         = "TEST_DELAY_AFTER_TEST"
	EnvNodeRelay              = "TEST_NODE_RELAY"
	EnvAndroidPlatformAPI     = "ANDROID_PLATFORM_API"
	EnvPlatforms              = "TEST_PLATFORMS"
	EnvFirefoxInstallLangPack = "TEST_FIREFOX_INSTALL_LANG_PACKAGE"
	EnvFirefoxLangPack        = "TEST_FIREFOX_LANG_PACK"
	EnvRecordVideo            = "TEST_ADD_CAPS_RECORD_VIDEO"
	EnvCustomCapabilities     = "TEST_CUSTOM_SPECIFIC_NAME"
	EnvSessionRate            = "TEST_SESSION_RATE"
)
