package storage

import (
	"time"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Storage persists and loads the last run's results (e.g. for the faills viewer).
type Storage interface {
	Save(report *domain.Report) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

var _ Storage = (*JSONStorage)(nil)

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// NewOutput summarizes report into the results file structure
func NewOutput(report *domain.Report) *domain.TestResultsOutput {
	passed := 0
	for _, r := range report.Results {
		if r.Passed {
			passed++
		}
	}

	return &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			RunID:           report.RunID,
			Seed:            report.Seed,
			TotalTestCases:  len(report.Results),
			PassedTestCases: passed,
			FailedFirstPass: len(report.FirstPassFailures()),
			FlakyTestCases:  len(report.Flaky()),
			FailedTestCases: len(report.Failed()),
			Duration:        report.Duration.String(),
			DurationSeconds: report.Duration.Seconds(),
			Workers:         report.Workers,
			Timestamp:       report.StartedAt.Format(time.RFC3339),
		},
		Details: report.Results,
		Reruns:  report.Reruns,
	}
}
