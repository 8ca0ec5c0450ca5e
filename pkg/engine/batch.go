package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BatchOutcome collects everything a single batch produced.
type BatchOutcome struct {
	// Results holds one CheckResult per (file, checker) pair, in input file
	// order and declared checker order regardless of execution timing.
	Results []CheckResult
	// Skipped lists files for which every configured checker failed at the
	// process level. Content findings do not cause a skip.
	Skipped []string
}

// BatchRunner drives every configured checker over every file of a batch.
// One file's checker failure never aborts the batch, never skips later
// checkers on the same file, and never skips later files: all failures are
// captured as ToolError data. A schema failure does not suppress the lint
// run on the same file.
type BatchRunner struct {
	checkers []Checker
	timeout  time.Duration
	workers  int
}

// NewBatchRunner creates a runner over the given checkers. timeout bounds
// each individual checker invocation. workers caps intra-batch file
// concurrency; values below 1 mean sequential.
func NewBatchRunner(checkers []Checker, timeout time.Duration, workers int) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	return &BatchRunner{checkers: checkers, timeout: timeout, workers: workers}
}

// Run executes the batch. No error is returned: per-file and per-checker
// failures are data in the outcome.
func (r *BatchRunner) Run(ctx context.Context, batch Batch) BatchOutcome {
	perFile := make([][]CheckResult, len(batch.Files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, file := range batch.Files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()
			perFile[i] = r.checkFile(ctx, file)
		}(i, file)
	}
	wg.Wait()

	outcome := BatchOutcome{}
	for i, file := range batch.Files {
		results := perFile[i]
		outcome.Results = append(outcome.Results, results...)
		if allToolErrors(results) {
			outcome.Skipped = append(outcome.Skipped, file)
		}
	}
	return outcome
}

// checkFile runs every checker on one file, in declared order. A checker's
// verdict never gates another checker's invocation.
func (r *BatchRunner) checkFile(ctx context.Context, file string) []CheckResult {
	results := make([]CheckResult, 0, len(r.checkers))
	for _, c := range r.checkers {
		results = append(results, r.invoke(ctx, c, file))
	}
	return results
}

// invoke runs one checker under its timeout and converts panics and
// malformed results into tool errors.
func (r *BatchRunner) invoke(ctx context.Context, c Checker, file string) (result CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = NewToolErrorResult(file, fmt.Sprintf("%s checker panicked: %v", c.Name(), rec))
		}
	}()

	checkCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result = c.Check(checkCtx, file)
	if result.File == "" {
		result.File = file
	}
	// Re-derive the validity invariant in case a checker got it wrong.
	result.Valid = len(result.Findings) == 0 && result.ToolError == ""
	return result
}

func allToolErrors(results []CheckResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, res := range results {
		if res.ToolError == "" {
			return false
		}
	}
	return true
}
