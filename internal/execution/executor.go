package execution

import (
	"context"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Executor runs a batch of test cases and returns one execution per case
type Executor interface {
	Execute(ctx context.Context, cases []domain.TestCase) []Execution
}

// Execution pairs a case with the record of running it
type Execution struct {
	Case   domain.TestCase
	Result domain.CaseResult
}
