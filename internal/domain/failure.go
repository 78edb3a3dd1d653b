package domain

// TestFailure is a failed case as shown by the faills viewer
type TestFailure struct {
	TestName string
	Attempt  int
	Flaky    bool // Passed on rerun
	Message  string
	Failures []string
	Output   string
	Resolved bool
	Index    int // Position in TestResultsOutput.Details
}

// Failures collects the first-pass failures of an output, flagging those that passed on rerun
func (o *TestResultsOutput) Failures() []TestFailure {
	passedRerun := make(map[string]bool)
	for _, r := range o.Reruns {
		if r.Passed {
			passedRerun[r.Name] = true
		}
	}

	var failures []TestFailure
	for i, d := range o.Details {
		if d.Passed {
			continue
		}
		failures = append(failures, TestFailure{
			TestName: d.Name,
			Attempt:  d.Attempt,
			Flaky:    passedRerun[d.Name],
			Message:  d.Error,
			Failures: d.Failures,
			Output:   d.Output,
			Resolved: d.Resolved,
			Index:    i,
		})
	}
	return failures
}
