package ui

import "github.com/jbolsens-legion/docker-selenium/internal/domain"

// Viewer displays test results in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}
