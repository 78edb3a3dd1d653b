package domain

import "context"

// TestCase is a single named unit of work with a pass/fail outcome
type TestCase interface {
	// Name is the qualified identity of the case, e.g. "TestTitle (ChromeTests)"
	Name() string
	// Run executes the case including its own setup and teardown
	Run(ctx context.Context) Result
}

// TestGroup expands into its member test cases
type TestGroup interface {
	Name() string
	Cases() []TestCase
}

// Result is what a test case reports after running
type Result struct {
	Failures []string // Assertion failures
	Err      error    // Unexpected error (setup, protocol, teardown)
	Output   string   // Free-form diagnostic output
}

// Successful reports whether the case passed
func (r Result) Successful() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// CaseFunc adapts a function into a TestCase
type CaseFunc struct {
	CaseName string
	Fn       func(ctx context.Context) Result
}

// Name returns the case name
func (c CaseFunc) Name() string { return c.CaseName }

// Run calls the wrapped function
func (c CaseFunc) Run(ctx context.Context) Result { return c.Fn(ctx) }

// Group is a static TestGroup
type Group struct {
	GroupName string
	Members   []TestCase
}

// Name returns the group name
func (g Group) Name() string { return g.GroupName }

// Cases returns the member cases in declaration order
func (g Group) Cases() []TestCase { return g.Members }
