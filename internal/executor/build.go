package executor

import (
	"context"

	"github.com/neznayu/harness/internal/models"
)

// StepResult holds the outcome of a single build step.
type StepResult struct {
	Step   models.Command
	Result models.CommandResult
	Err    error
}

// Passed reports whether the step ran and exited 0.
func (s StepResult) Passed() bool {
	return s.Err == nil && s.Result.Succeeded()
}

// RunBuild executes build steps sequentially.
// Returns a *BuildError (matching ErrBuildFailed) on the first step that
// exits non-zero or cannot be run; later steps are never started.
// Returns nil if all steps pass or if there are no steps to run.
func RunBuild(ctx context.Context, runner CommandRunner, steps []models.Command, logger Logger) ([]StepResult, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		// Check context before running
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		GracefulInfo(logger, "Build step %d/%d: %s", i+1, len(steps), step.Label())

		res, err := runner.Run(ctx, step)
		sr := StepResult{Step: step, Result: res, Err: err}
		results = append(results, sr)

		if logger != nil {
			logger.LogBuildStep(step, res, err)
		}

		if !sr.Passed() {
			return results, &BuildError{
				Index:  i,
				Total:  len(steps),
				Step:   step,
				Result: res,
				Err:    err,
			}
		}
	}

	return results, nil
}
