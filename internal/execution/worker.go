package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
	"github.com/jbolsens-legion/docker-selenium/internal/ui"
)

var _ Executor = (*WorkerPool)(nil)

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	workers  int
	runner   *Runner
	logger   *slog.Logger
	progress *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool. workers <= 0 gives every case its own worker.
func NewWorkerPool(workers int, runner *Runner, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{
		workers: workers,
		runner:  runner,
		logger:  logger,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Workers returns the number of workers used for a batch of n cases
func (wp *WorkerPool) Workers(n int) int {
	if wp.workers <= 0 || wp.workers > n {
		return max(n, 1)
	}
	return wp.workers
}

type job struct {
	tc        domain.TestCase
	submitted time.Time
}

// Execute runs every case exactly once and returns the executions in completion order.
func (wp *WorkerPool) Execute(ctx context.Context, cases []domain.TestCase) []Execution {
	if len(cases) == 0 {
		return nil
	}

	queue := make(chan job, len(cases))
	results := make(chan Execution, len(cases))
	for _, tc := range cases {
		queue <- job{tc: tc, submitted: time.Now()}
	}
	close(queue)

	var mu sync.Mutex
	var passed, failed int
	workerCount := wp.Workers(len(cases))

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				res := wp.runner.Run(ctx, j.tc, 1, j.submitted)
				results <- Execution{Case: j.tc, Result: res}
				mu.Lock()
				if res.Passed {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed)
				}
				mu.Unlock()
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]Execution, 0, len(cases))
	for ex := range results {
		wp.logger.Info("finish", "test", ex.Result.Name, "elapsed", ex.Result.Duration.Round(time.Millisecond))
		if !ex.Result.Passed {
			wp.logger.Error("test failed", "test", ex.Result.Name, "error", ex.Result.Err)
			if ex.Result.Output != "" {
				wp.logger.Debug("test output", "test", ex.Result.Name, "output", ex.Result.Output)
			}
		}
		all = append(all, ex)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return all
}
