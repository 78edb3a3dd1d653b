package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config holds all configuration for the application.
// It is built once at process start and passed to every component.
type Config struct {
	Grid Grid

	// Browser settings
	Headless         bool
	ManagedDownloads bool
	WaitTimeout      time.Duration
	RecordVideo      bool
	// CustomCapabilities sends and verifies the myApp:* capabilities
	CustomCapabilities bool

	// Suite composition
	ParallelHardening  bool
	ParallelCount      int
	DelayAfterTest     time.Duration
	NodeRelay          string
	AndroidPlatformAPI string
	Platforms          string

	FirefoxInstallLangPack bool
	FirefoxLangPackPath    string

	// SessionRate limits new session requests per second, 0 means unlimited
	SessionRate float64

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors int

	// Command flags
	Flags Flags
}

// Grid holds the remote WebDriver endpoint settings
type Grid struct {
	Protocol string
	Host     string
	Port     string
	Username string
	Password string
}

// URL returns the grid endpoint assembled from protocol, host and port
func (g Grid) URL() string {
	return fmt.Sprintf("%s://%s:%s", g.Protocol, g.Host, g.Port)
}

// Flags holds command-line flags
type Flags struct {
	Processors    int
	Seed          uint64
	Browsers      []string
	NameFilter    string
	FailOnFlaky   bool
	NoProgress    bool
	OpenFaills    bool
	HistoryDriver string
	HistoryDSN    string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		Grid: Grid{
			Protocol: DefaultGridProtocol,
			Host:     DefaultGridHost,
			Port:     DefaultGridPort,
		},
		ManagedDownloads:    true,
		WaitTimeout:         DefaultWaitTimeout,
		RecordVideo:         true,
		ParallelCount:       DefaultParallelCount,
		NodeRelay:           DefaultNodeRelay,
		Platforms:           DefaultPlatforms,
		FirefoxLangPackPath: DefaultFirefoxLangPack,
		OutputJSONFile:      DefaultOutputJSONFile,
		OutputJSONDir:       DefaultOutputJSONDir,
		Processors:          DefaultProcessors,
	}
}

// Load creates a config from the environment. Values from envFile are used
// only for keys the environment does not set. A missing envFile is not an error.
func Load(envFile string, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		lookup = overlay(lookup, fileVars)
	}
	return FromEnv(lookup)
}

// overlay falls back to fileVars when the primary lookup has no value
func overlay(primary LookupFunc, fileVars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
}

// FromEnv creates a config with defaults and applies every recognized variable
func FromEnv(lookup LookupFunc) (*Config, error) {
	cfg := New()
	r := reader{lookup: lookup}

	cfg.Grid.Protocol = r.str(EnvGridProtocol, cfg.Grid.Protocol)
	cfg.Grid.Host = r.str(EnvGridHost, cfg.Grid.Host)
	cfg.Grid.Port = r.str(EnvGridPort, cfg.Grid.Port)
	cfg.Grid.Username = r.str(EnvGridUsername, "")
	cfg.Grid.Password = r.str(EnvGridPassword, "")

	cfg.Headless = r.flag(EnvHeadless, false)
	cfg.ManagedDownloads = r.flag(EnvManagedDownloads, true)
	cfg.WaitTimeout = r.seconds(EnvWaitTimeout, cfg.WaitTimeout)
	cfg.ParallelHardening = r.flag(EnvParallelHardening, false)
	cfg.ParallelCount = r.integer(EnvParallelCount, cfg.ParallelCount)
	cfg.DelayAfterTest = r.seconds(EnvDelayAfterTest, 0)
	cfg.NodeRelay = r.str(EnvNodeRelay, cfg.NodeRelay)
	cfg.AndroidPlatformAPI = r.str(EnvAndroidPlatformAPI, "")
	cfg.Platforms = r.str(EnvPlatforms, cfg.Platforms)
	cfg.FirefoxInstallLangPack = r.flag(EnvFirefoxInstallLangPack, false)
	cfg.FirefoxLangPackPath = r.str(EnvFirefoxLangPack, cfg.FirefoxLangPackPath)
	cfg.RecordVideo = r.flag(EnvRecordVideo, true)
	cfg.CustomCapabilities = r.flag(EnvCustomCapabilities, false)
	cfg.SessionRate = r.float(EnvSessionRate, 0)

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	// The count is only read in hardening mode
	if cfg.ParallelHardening && cfg.ParallelCount < 1 {
		return nil, fmt.Errorf("%s must be at least 1 when %s is true, got %d", EnvParallelCount, EnvParallelHardening, cfg.ParallelCount)
	}
	return cfg, nil
}

// ApplyFlags overlays command-line flags on the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
}

// RelayEnabled reports whether tests are relayed to a device farm node
func (c *Config) RelayEnabled() bool {
	return c.NodeRelay != "false"
}

// Repeat returns how many times the browser groups are added to one run
func (c *Config) Repeat() int {
	if !c.ParallelHardening {
		return 1
	}
	return c.ParallelCount
}

// GetOutputPath returns the absolute path to the output JSON file.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// reader collects parse errors so every bad variable is reported at once
type reader struct {
	lookup LookupFunc
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

// flag treats only "true" (any case) as true, like the shell scripts driving the suite
func (r *reader) flag(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid rate %q", key, v))
		return def
	}
	return f
}

func (r *reader) seconds(key string, def time.Duration) time.Duration {
	n := r.integer(key, -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
