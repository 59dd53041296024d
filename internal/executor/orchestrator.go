package executor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/neznayu/harness/internal/fileutil"
	"github.com/neznayu/harness/internal/models"
)

// HarnessConfig is everything a harness run needs to know; nothing is read
// from ambient process state.
type HarnessConfig struct {
	BuildSteps  []models.Command
	SkipBuild   bool
	FixtureRoot string
	Executable  string
	Scan        fileutil.ScanOptions
	Fixtures    FixtureOptions
}

// Harness runs the build, then every fixture through the built executable.
type Harness struct {
	runner CommandRunner
	logger Logger
	config HarnessConfig
}

// NewHarness creates a new Harness instance.
// The logger parameter is optional and can be nil.
func NewHarness(runner CommandRunner, logger Logger, cfg HarnessConfig) *Harness {
	if runner == nil {
		panic("command runner cannot be nil")
	}

	return &Harness{
		runner: runner,
		logger: logger,
		config: cfg,
	}
}

// Run executes the pipeline: build (must succeed), discover fixtures, run
// fixtures. It handles SIGINT/SIGTERM by cancelling the in-flight invocation.
//
// The summary is returned even when err is non-nil. A build failure yields a
// *BuildError with summary.Results nil; fixture failures never produce an error.
// A missing fixture root is logged and gives an empty result set.
func (h *Harness) Run(ctx context.Context) (*models.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			GracefulWarn(h.logger, "Received interrupt signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	startTime := time.Now()
	summary := &models.RunSummary{
		ID:          uuid.New().String(),
		StartedAt:   startTime,
		BuildOK:     true,
		FixtureRoot: h.config.FixtureRoot,
		Executable:  h.config.Executable,
	}
	finish := func() {
		summary.Duration = time.Since(startTime)
		if h.logger != nil {
			h.logger.LogSummary(*summary)
		}
	}

	if h.config.SkipBuild {
		GracefulInfo(h.logger, "Skipping build")
	} else {
		steps, err := RunBuild(ctx, h.runner, h.config.BuildSteps, h.logger)
		summary.BuildSteps = len(steps)
		if err != nil {
			summary.BuildOK = false
			finish()
			return summary, &PhaseError{Phase: PhaseBuild, Err: err}
		}
	}

	// A fixture root that does not exist holds no fixtures
	if _, err := os.Stat(h.config.FixtureRoot); os.IsNotExist(err) {
		GracefulWarn(h.logger, "Fixture root %s does not exist; no fixtures to run", h.config.FixtureRoot)
		summary.Results = models.NewResultSet()
		finish()
		return summary, nil
	}

	files, scanErrs, err := fileutil.DiscoverFixtures(h.config.FixtureRoot, h.config.Scan)
	if err != nil {
		GracefulError(h.logger, "Fixture discovery failed: %v", err)
		finish()
		return summary, &PhaseError{Phase: PhaseDiscover, Err: err}
	}
	summary.ScanErrors = scanErrs
	for _, scanErr := range scanErrs {
		GracefulWarn(h.logger, "Skipping unreadable fixture entry: %v", scanErr)
	}

	GracefulInfo(h.logger, "Running %d fixture(s) from %s", len(files), h.config.FixtureRoot)

	results, err := RunFixtures(ctx, h.runner, h.config.Executable, files, h.config.Fixtures, h.logger)
	summary.Results = results
	if err != nil {
		GracefulError(h.logger, "Fixture run interrupted after %d of %d fixture(s): %v", results.Len(), len(files), err)
	}
	finish()
	if err != nil {
		return summary, &PhaseError{Phase: PhaseFixtures, Err: err}
	}

	return summary, nil
}

// ResolveExecutable makes a relative executable path absolute so that it
// stays valid regardless of the working directory fixtures run in.
// Bare names (no path separator) are left for PATH lookup.
func ResolveExecutable(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("test executable path is empty")
	}
	if filepath.IsAbs(path) || filepath.Base(path) == path {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve test executable %s: %w", path, err)
	}
	return abs, nil
}
