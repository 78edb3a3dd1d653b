package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailures = 1  // At least one case failed the rerun
	ExitFlaky    = 2  // Cases passed only on rerun and --fail-on-flaky is set
	ExitConfig   = 3  // Bad environment or .env file
	ExitUsage    = 64 // Bad arguments or flags
)

// ExitError carries the exit code the process should end with
type ExitError struct {
	Code int
	Err  error
}

// NewExitError wraps err with an exit code
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailures
}

// UsageArgs turns argument validation errors into usage errors
func UsageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return NewExitError(ExitUsage, fmt.Errorf("%w\n\nUsage: %s", err, cmd.UseLine()))
		}
		return nil
	}
}

// UsageFlagError is a cobra flag error func reporting bad flags as usage errors
func UsageFlagError(cmd *cobra.Command, err error) error {
	return NewExitError(ExitUsage, err)
}
