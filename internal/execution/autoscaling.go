package execution

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Autoscaling runs a shuffled pool of test cases in parallel and reruns the
// first-pass failures once, one at a time.
type Autoscaling struct {
	pool      *WorkerPool
	runner    *Runner
	scheduler Scheduler
	logger    *slog.Logger
}

// NewAutoscaling creates a new Autoscaling runner
func NewAutoscaling(pool *WorkerPool, runner *Runner, scheduler Scheduler, logger *slog.Logger) *Autoscaling {
	return &Autoscaling{
		pool:      pool,
		runner:    runner,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Run executes every case of every group. The returned report is always
// populated; the error is a *RerunError when a case failed both passes.
func (a *Autoscaling) Run(ctx context.Context, groups []domain.TestGroup) (*domain.Report, error) {
	start := time.Now()
	cases := a.scheduler.Schedule(groups)

	report := &domain.Report{
		RunID:     uuid.NewString(),
		Seed:      a.scheduler.Seed(),
		Workers:   a.pool.Workers(len(cases)),
		StartedAt: start,
	}
	defer func() {
		report.Duration = time.Since(start)
	}()

	a.logger.Info("tests added to worker pool", "count", len(cases), "workers", report.Workers, "seed", report.Seed)

	var failed []domain.TestCase
	for _, ex := range a.pool.Execute(ctx, cases) {
		report.Results = append(report.Results, ex.Result)
		if !ex.Result.Passed {
			failed = append(failed, ex.Case)
		}
	}

	if len(failed) == 0 {
		return report, nil
	}

	a.logger.Warn("going to rerun failed tests", "count", len(failed))

	var rerunFailures []*CaseError
	var remediated []string
	for _, tc := range failed {
		a.logger.Info("rerunning test", "test", tc.Name())
		res := a.runner.Run(ctx, tc, 2, time.Now())
		report.Reruns = append(report.Reruns, res)
		if res.Passed {
			remediated = append(remediated, res.Name)
			continue
		}
		a.logger.Error("test failed again", "test", res.Name, "error", res.Err)
		rerunFailures = append(rerunFailures, asCaseError(res))
	}

	if len(rerunFailures) > 0 {
		return report, &RerunError{Failures: rerunFailures}
	}

	a.logger.Warn("all failed tests passed in rerun", "count", len(failed), "tests", remediated)
	return report, nil
}

func asCaseError(res domain.CaseResult) *CaseError {
	if ce, ok := res.Err.(*CaseError); ok {
		return ce
	}
	return &CaseError{Name: res.Name, Attempt: res.Attempt, Cause: res.Err}
}
