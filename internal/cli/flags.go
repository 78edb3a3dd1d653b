package cli

import "github.com/jbolsens-legion/docker-selenium/internal/config"

// Flags holds command-line flags
type Flags struct {
	// Root flags, shared by every command
	EnvFile   string
	LogLevel  string
	LogFormat string

	Processors    int
	Seed          uint64
	Browsers      []string
	NameFilter    string
	FailOnFlaky   bool
	NoProgress    bool
	OpenFaills    bool
	OutputDir     string
	OutputFile    string
	HistoryDriver string
	HistoryDSN    string

	// envvars
	Watch    bool
	SkipDirs []string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:    f.Processors,
		Seed:          f.Seed,
		Browsers:      f.Browsers,
		NameFilter:    f.NameFilter,
		FailOnFlaky:   f.FailOnFlaky,
		NoProgress:    f.NoProgress,
		OpenFaills:    f.OpenFaills,
		HistoryDriver: f.HistoryDriver,
		HistoryDSN:    f.HistoryDSN,
	}
}

// Apply overlays the flags on cfg, including the output location when set
func (f *Flags) Apply(cfg *config.Config) {
	cfg.ApplyFlags(f.ToConfigFlags())
	if f.OutputDir != "" {
		cfg.OutputJSONDir = f.OutputDir
	}
	if f.OutputFile != "" {
		cfg.OutputJSONFile = f.OutputFile
	}
}
