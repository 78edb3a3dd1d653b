package domain

import "time"

// CaseResult records one execution of a test case
type CaseResult struct {
	Name      string        `json:"name"`
	Attempt   int           `json:"attempt"` // 1 for the parallel pass, 2 for the rerun
	Passed    bool          `json:"passed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`
	Seconds   float64       `json:"duration_seconds"`
	Error     string        `json:"error,omitempty"`
	Failures  []string      `json:"failures,omitempty"`
	Output    string        `json:"output,omitempty"`
	Resolved  bool          `json:"resolved,omitempty"` // Marked as looked at in the faills viewer
	Err       error         `json:"-"`
}

// Report is the outcome of one autoscaling run
type Report struct {
	RunID     string        `json:"run_id"`
	Seed      uint64        `json:"seed"`
	Workers   int           `json:"workers"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`
	Results   []CaseResult  `json:"results"` // First pass, completion order
	Reruns    []CaseResult  `json:"reruns"`  // Rerun pass, rerun order
}

// FirstPassFailures returns the cases that failed the parallel pass
func (r *Report) FirstPassFailures() []CaseResult {
	var failed []CaseResult
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Failed returns the reruns that failed again
func (r *Report) Failed() []CaseResult {
	var failed []CaseResult
	for _, res := range r.Reruns {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Flaky returns the reruns that passed after failing the first pass
func (r *Report) Flaky() []CaseResult {
	var flaky []CaseResult
	for _, res := range r.Reruns {
		if res.Passed {
			flaky = append(flaky, res)
		}
	}
	return flaky
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	Seed            uint64  `json:"seed"`
	TotalTestCases  int     `json:"total_test_cases"`
	PassedTestCases int     `json:"passed_test_cases"`
	FailedFirstPass int     `json:"failed_first_pass"`
	FlakyTestCases  int     `json:"flaky_test_cases"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []CaseResult    `json:"details"`
	Reruns  []CaseResult    `json:"reruns"`
}
