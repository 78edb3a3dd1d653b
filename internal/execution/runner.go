package execution

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Runner executes a single test case and turns its outcome into a record
type Runner struct{}

// NewRunner creates a new Runner
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes tc. Elapsed time is measured from submitted; a panic inside
// the case is recovered and recorded as a failure.
func (r *Runner) Run(ctx context.Context, tc domain.TestCase, attempt int, submitted time.Time) (res domain.CaseResult) {
	res = domain.CaseResult{
		Name:      tc.Name(),
		Attempt:   attempt,
		StartedAt: submitted,
	}

	defer func() {
		if p := recover(); p != nil {
			res.Passed = false
			res.Err = &CaseError{Name: res.Name, Attempt: attempt, Cause: fmt.Errorf("panic: %v", p)}
			res.Output = string(debug.Stack())
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		res.Duration = time.Since(submitted)
		res.Seconds = res.Duration.Seconds()
	}()

	outcome := tc.Run(ctx)
	res.Failures = outcome.Failures
	res.Output = outcome.Output
	res.Passed = outcome.Successful()
	if !res.Passed {
		res.Err = &CaseError{Name: res.Name, Attempt: attempt, Cause: causeOf(outcome)}
	}
	return res
}

func causeOf(outcome domain.Result) error {
	if outcome.Err != nil {
		return outcome.Err
	}
	return fmt.Errorf("%w: %s", ErrUnsuccessful, strings.Join(outcome.Failures, "; "))
}
