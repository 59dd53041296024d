package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/neznayu/harness/internal/models"
)

// CommandRunner abstracts process execution for testability.
// A non-zero exit status is reported through CommandResult.ExitStatus, not as
// an error. The error is reserved for invocations that never produced an exit
// status: the program could not be started, or it was stopped by a deadline.
type CommandRunner interface {
	Run(ctx context.Context, command models.Command) (models.CommandResult, error)
}

// ExecRunner runs commands as direct child processes, without a shell.
// The child inherits the harness environment, and its working directory
// unless the command sets Dir.
type ExecRunner struct {
	Timeout time.Duration // Per-invocation limit (0 = none)
}

// NewExecRunner creates a CommandRunner that executes real processes.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// waitDelay bounds how long Run waits for output pipes after the child was
// killed, so grandchildren holding the pipes open cannot stall the harness.
const waitDelay = 2 * time.Second

// Run executes the command and captures stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, command models.Command) (models.CommandResult, error) {
	if err := command.Validate(); err != nil {
		return models.CommandResult{ExitStatus: -1}, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command.Executable, command.Args...)
	cmd.Dir = command.Dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := models.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitStatus = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %q after %v", ErrCommandTimeout, command.String(), result.Duration.Round(time.Millisecond))
		}
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the child was killed by a signal; that is still
		// an ordinary failed run as far as the harness is concerned.
		result.ExitStatus = exitErr.ExitCode()
		return result, nil
	}

	result.ExitStatus = -1
	return result, fmt.Errorf("start %q: %w", command.Executable, err)
}
