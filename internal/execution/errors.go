package execution

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsuccessful is the cause recorded when a case reported failures without an error
var ErrUnsuccessful = errors.New("test was not successful")

// CaseError wraps the cause of a failed test case execution
type CaseError struct {
	Name    string
	Attempt int
	Cause   error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("%s failed with exception: %v", e.Name, e.Cause)
}

func (e *CaseError) Unwrap() error {
	return e.Cause
}

// RerunError is returned when at least one case failed again on rerun
type RerunError struct {
	Failures []*CaseError
}

func (e *RerunError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("rerun test failed: %s", strings.Join(parts, "; "))
}

func (e *RerunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Names returns the names of the cases that failed the rerun
func (e *RerunError) Names() []string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Name)
	}
	return names
}
