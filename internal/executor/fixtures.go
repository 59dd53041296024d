package executor

import (
	"context"
	"strings"

	"github.com/neznayu/harness/internal/models"
	"golang.org/x/sync/errgroup"
)

// FixtureOptions controls how fixtures are run and keyed.
type FixtureOptions struct {
	KeyBy       string // models.KeyByPath (default) or models.KeyByName
	Parallelism int    // Concurrent invocations; values below 2 run sequentially
}

// RunFixtures invokes executable once per fixture, passing the fixture path as
// its sole argument, and records every outcome in a ResultSet.
//
// A failing fixture is data, not an error: its trimmed stderr is recorded and
// the next fixture runs. The returned error is non-nil only when ctx was
// cancelled, in which case fixtures not yet started are left out of the set.
// RunFixtures returns after every started invocation has finished.
func RunFixtures(ctx context.Context, runner CommandRunner, executable string, files []models.FixtureFile, opts FixtureOptions, logger Logger) (*models.ResultSet, error) {
	set := models.NewResultSet()

	record := func(file models.FixtureFile) {
		result := runFixture(ctx, runner, executable, file, opts.KeyBy)
		set.Record(result)
		if logger != nil {
			logger.LogFixtureResult(result)
		}
	}

	if opts.Parallelism < 2 {
		for _, file := range files {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			record(file)
		}
		return set, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(opts.Parallelism)

	for _, file := range files {
		file := file
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			record(file)
			return nil
		})
	}

	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	return set, ctx.Err()
}

// runFixture runs the program under test against one fixture.
func runFixture(ctx context.Context, runner CommandRunner, executable string, file models.FixtureFile, keyBy string) models.TestResult {
	res, err := runner.Run(ctx, models.Command{
		Executable: executable,
		Args:       []string{file.Path},
	})

	output, passed := fixtureOutput(res, err)

	return models.TestResult{
		Key:        FixtureKey(file, keyBy),
		File:       file,
		Output:     output,
		ExitStatus: res.ExitStatus,
		Passed:     passed,
		Duration:   res.Duration,
	}
}

// fixtureOutput picks the recorded value for an invocation: trimmed stdout on
// exit 0, trimmed stderr otherwise. A run that produced no stderr because it
// never started (or was killed by its deadline) records the run error instead.
func fixtureOutput(res models.CommandResult, err error) (string, bool) {
	if err == nil && res.Succeeded() {
		return strings.TrimSpace(res.Stdout), true
	}

	stderr := strings.TrimSpace(res.Stderr)
	if stderr == "" && err != nil {
		return err.Error(), false
	}
	return stderr, false
}

// FixtureKey returns the result mapping key for a fixture.
func FixtureKey(file models.FixtureFile, keyBy string) string {
	if keyBy == models.KeyByName {
		return file.Name
	}
	if file.RelPath != "" {
		return file.RelPath
	}
	return file.Name
}
