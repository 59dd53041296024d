package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/neznayu/harness/internal/config"
	"github.com/neznayu/harness/internal/display"
	"github.com/neznayu/harness/internal/executor"
	"github.com/neznayu/harness/internal/filelock"
	"github.com/neznayu/harness/internal/fileutil"
	"github.com/neznayu/harness/internal/history"
	"github.com/neznayu/harness/internal/logger"
	"github.com/neznayu/harness/internal/models"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, then run every fixture and print the results",
		Long: `Build the project, then run the built executable once per fixture file
and print a "Test results:" block mapping each fixture to its output.

A failed build step aborts the run before any fixture executes. The run
still returns normally unless --fail-on-build-error is set. Fixture failures
are reported but never change the exit status.

Examples:
  harness run                              # ../build + closure/, as configured
  harness run --skip-build                 # Reuse the existing executable
  harness run --fixtures tests --parallel 4
  harness run --command-timeout 10s        # Kill fixtures that hang
  harness run --key-by name                # Key results by base file name
  harness run --record                     # Save the run to history`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("fixtures", "", "Fixture root directory (default: closure)")
	cmd.Flags().String("build-dir", "", "Build output directory (default: ../build)")
	cmd.Flags().String("executable", "", "Program under test (default: <build-dir>/NeZnayu)")
	cmd.Flags().Bool("skip-build", false, "Run fixtures against the existing executable")
	cmd.Flags().Bool("fail-on-build-error", false, "Exit non-zero when a build step fails")
	cmd.Flags().String("timeout", "", "Maximum time for the whole run (e.g., 10m)")
	cmd.Flags().String("command-timeout", "", "Maximum time per build step or fixture (e.g., 30s)")
	cmd.Flags().Int("parallel", 1, "Number of fixtures to run concurrently")
	cmd.Flags().String("key-by", "", "Result key: path (relative path) or name (base name)")
	cmd.Flags().Bool("verbose", false, "Show every build step and fixture outcome")
	cmd.Flags().String("log-dir", "", "Directory for run logs")
	cmd.Flags().Bool("record", false, "Record this run in the history database")
}

// loadConfig reads --config (or .harness/config.yaml) and applies any run
// flags defined on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only flags set on the command line)
	var f config.FlagOverrides
	flags := cmd.Flags()

	stringFlag := func(name string) *string {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	boolFlag := func(name string) *bool {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}
	durationFlag := func(name string) (*time.Duration, error) {
		s := stringFlag(name)
		if s == nil {
			return nil, nil
		}
		d, err := time.ParseDuration(*s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s format %q: %w", name, *s, err)
		}
		return &d, nil
	}

	f.FixtureRoot = stringFlag("fixtures")
	f.BuildDir = stringFlag("build-dir")
	f.Executable = stringFlag("executable")
	f.SkipBuild = boolFlag("skip-build")
	f.FailOnBuild = boolFlag("fail-on-build-error")
	f.KeyBy = stringFlag("key-by")
	f.LogDir = stringFlag("log-dir")
	f.RecordHistory = boolFlag("record")

	if f.Timeout, err = durationFlag("timeout"); err != nil {
		return nil, err
	}
	if f.CommandTimeout, err = durationFlag("command-timeout"); err != nil {
		return nil, err
	}
	if flags.Lookup("parallel") != nil && flags.Changed("parallel") {
		n, _ := flags.GetInt("parallel")
		f.Parallelism = &n
	}
	if verbose := boolFlag("verbose"); verbose != nil && *verbose {
		level := "debug"
		f.LogLevel = &level
	}

	cfg.MergeWithFlags(f)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return executeRun(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// executeRun drives one harness run: lock, log, build, test, report, record.
// Results go to out; progress logging goes to errOut.
func executeRun(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	lock, err := filelock.AcquireRunLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	log, closeLog, err := newRunLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer closeLog()

	executable, err := executor.ResolveExecutable(cfg.Executable)
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	harness := executor.NewHarness(executor.NewExecRunner(cfg.CommandTimeout), log, executor.HarnessConfig{
		BuildSteps:  cfg.BuildSteps,
		SkipBuild:   cfg.SkipBuild,
		FixtureRoot: cfg.FixtureRoot,
		Executable:  executable,
		Scan:        scanOptions(cfg),
		Fixtures: executor.FixtureOptions{
			KeyBy:       cfg.KeyBy,
			Parallelism: cfg.Parallelism,
		},
	})

	summary, runErr := harness.Run(ctx)

	if cfg.History.Enabled && summary != nil {
		recordHistory(cfg.History.DBPath, *summary, log)
	}

	opts := display.ReportOptions{Color: display.ColorEnabled(out)}

	var buildErr *executor.BuildError
	if errors.As(runErr, &buildErr) {
		display.PrintBuildFailure(out, buildErr, opts)
		return buildFailureResult(cfg)
	}
	if summary == nil || summary.Results == nil {
		return runErr
	}

	if len(summary.ScanErrors) > 0 {
		display.WarnSkipped(summary.ScanErrors).Display(errOut, display.ColorEnabled(errOut))
	}
	if err := display.PrintResults(out, summary.Results, opts); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}
	if err := display.PrintSummary(out, summary.Results, opts); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}

	// Fixture failures are data; only an interrupted run is an error here.
	return runErr
}

// buildFailureResult is what a command returns once a build failure has been
// reported: nothing, unless the configuration asks for a failing exit status.
func buildFailureResult(cfg *config.Config) error {
	if cfg.FailOnBuildError {
		return executor.ErrBuildFailed
	}
	return nil
}

// scanOptions builds the fixture walk options. The harness's own state (home
// directory, logs, lock and history database) is never treated as a fixture.
func scanOptions(cfg *config.Config) fileutil.ScanOptions {
	excluded := []string{config.HomeDir("."), cfg.LogDir, cfg.LockFile}
	if db := cfg.History.DBPath; db != "" {
		excluded = append(excluded, db, db+"-journal", db+"-wal", db+"-shm")
	}

	return fileutil.ScanOptions{
		Pattern:       cfg.Fixtures.Pattern,
		Extensions:    cfg.Fixtures.Extensions,
		ExcludeDirs:   cfg.Fixtures.ExcludeDirs,
		ExcludeHidden: cfg.Fixtures.ExcludeHidden,
		ExcludePaths:  excluded,
	}
}

// newRunLogger builds the console logger plus, when a log directory is
// configured, a file logger. The returned func closes the file logger.
func newRunLogger(cfg *config.Config, errOut io.Writer) (executor.Logger, func(), error) {
	consoleLog := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	if cfg.LogDir == "" {
		return consoleLog, func() {}, nil
	}

	fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	consoleLog.LogDebug("Logging to " + fileLog.Path())
	fileLog.LogDebug(fmt.Sprintf("Fixture root: %s, executable: %s, key by: %s, parallelism: %d",
		cfg.FixtureRoot, cfg.Executable, cfg.KeyBy, cfg.Parallelism))

	multiLog := &multiLogger{
		loggers: []executor.Logger{consoleLog, fileLog},
	}
	return multiLog, func() { fileLog.Close() }, nil
}

// recordHistory saves the run. Failures are logged and never fail the run.
func recordHistory(dbPath string, summary models.RunSummary, log executor.Logger) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("Failed to open history database: %v", err))
		return
	}
	defer store.Close()

	// The run context may already be cancelled; recording should still happen.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.RecordRun(ctx, summary); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record run history: %v", err))
		return
	}
	log.LogInfo(fmt.Sprintf("Recorded run %s in %s", summary.ID, store.Path()))
}

// multiLogger implements executor.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []executor.Logger
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogBuildStep forwards to all loggers
func (ml *multiLogger) LogBuildStep(step models.Command, result models.CommandResult, err error) {
	for _, l := range ml.loggers {
		l.LogBuildStep(step, result, err)
	}
}

// LogFixtureResult forwards to all loggers
func (ml *multiLogger) LogFixtureResult(result models.TestResult) {
	for _, l := range ml.loggers {
		l.LogFixtureResult(result)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(summary models.RunSummary) {
	for _, l := range ml.loggers {
		l.LogSummary(summary)
	}
}
