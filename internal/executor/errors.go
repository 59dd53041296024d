package executor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neznayu/harness/internal/models"
)

var (
	// ErrBuildFailed indicates a build step exited non-zero or could not run.
	ErrBuildFailed = errors.New("build failed")

	// ErrCommandTimeout indicates an invocation was killed by its deadline.
	ErrCommandTimeout = errors.New("command timed out")
)

// ExecutionPhase represents the phase of a harness run where an error occurred.
type ExecutionPhase int

const (
	// PhaseBuild represents errors while running build steps.
	PhaseBuild ExecutionPhase = iota
	// PhaseDiscover represents errors while walking the fixture tree.
	PhaseDiscover
	// PhaseFixtures represents errors while running fixtures.
	PhaseFixtures
)

// String returns the string representation of ExecutionPhase.
func (p ExecutionPhase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseDiscover:
		return "discover"
	case PhaseFixtures:
		return "fixtures"
	default:
		return "unknown"
	}
}

// PhaseError ties a fatal error to the phase that produced it.
type PhaseError struct {
	Phase ExecutionPhase
	Err   error
}

// Error implements the error interface for PhaseError.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *PhaseError) Unwrap() error {
	return e.Err
}

// BuildError describes the build step that stopped the build.
// It matches ErrBuildFailed with errors.Is.
type BuildError struct {
	Index  int                  // Zero-based index of the failing step
	Total  int                  // Number of steps in the build
	Step   models.Command       // The failing step
	Result models.CommandResult // What the step produced before failing
	Err    error                // Run error, nil when the step simply exited non-zero
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("build step %d/%d (%s) failed: %q", e.Index+1, e.Total, e.Step.Label(), e.Step.String()))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	} else {
		sb.WriteString(fmt.Sprintf(" exited with status %d after %v", e.Result.ExitStatus, e.Result.Duration.Round(time.Millisecond)))
	}
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		sb.WriteString(fmt.Sprintf("\nError: %s", stderr))
	}
	return sb.String()
}

// Is reports whether target is ErrBuildFailed.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuildFailed
}

// Unwrap returns the underlying run error, if any.
func (e *BuildError) Unwrap() error {
	return e.Err
}
