package executor

import (
	"context"
	"sync"

	"github.com/neznayu/harness/internal/models"
)

// FakeCommandRunner implements CommandRunner for testing.
// Responses are keyed by the rendered command line (models.Command.String).
type FakeCommandRunner struct {
	mu       sync.Mutex
	results  map[string]models.CommandResult
	errors   map[string]error
	commands []string
}

// NewFakeCommandRunner creates a new FakeCommandRunner
func NewFakeCommandRunner() *FakeCommandRunner {
	return &FakeCommandRunner{
		results:  make(map[string]models.CommandResult),
		errors:   make(map[string]error),
		commands: []string{},
	}
}

// SetResult sets the result for a given command line
func (f *FakeCommandRunner) SetResult(cmd string, result models.CommandResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmd] = result
}

// SetError sets the run error for a given command line
func (f *FakeCommandRunner) SetError(cmd string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[cmd] = err
}

// Run records the command and returns the configured result/error
func (f *FakeCommandRunner) Run(ctx context.Context, command models.Command) (models.CommandResult, error) {
	line := command.String()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, line)

	if ctx.Err() != nil {
		return models.CommandResult{ExitStatus: -1}, ctx.Err()
	}

	if err, ok := f.errors[line]; ok {
		res := f.results[line]
		if res.ExitStatus == 0 {
			res.ExitStatus = -1
		}
		return res, err
	}

	return f.results[line], nil
}

// Commands returns all executed command lines
func (f *FakeCommandRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

// recordingLogger implements Logger and keeps everything it is given.
type recordingLogger struct {
	mu       sync.Mutex
	infos    []string
	warns    []string
	errors   []string
	steps    []models.Command
	fixtures []models.TestResult
	summary  *models.RunSummary
}

func (l *recordingLogger) LogInfo(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) LogWarn(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
}

func (l *recordingLogger) LogError(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

func (l *recordingLogger) LogBuildStep(step models.Command, result models.CommandResult, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *recordingLogger) LogFixtureResult(result models.TestResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixtures = append(l.fixtures, result)
}

func (l *recordingLogger) LogSummary(summary models.RunSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summary = &summary
}
