package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/neznayu/harness/internal/models"
)

// FileLogger logs harness events to a timestamped run log and maintains a
// latest.log symlink pointing to the most recent run.
// Unlike the console it records the full captured output of every build step
// and fixture, with ANSI escape sequences removed.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLoggerWithDir creates a new FileLogger in logDir with log level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
// It creates the log directory if it doesn't exist, opens run-YYYYMMDD-HHMMSS.log
// and repoints latest.log at it.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== Harness Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogBuildStep records a build step with its full stdout and stderr.
// Build steps are logged at INFO regardless of outcome.
func (fl *FileLogger) LogBuildStep(step models.Command, result models.CommandResult, err error) {
	if !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Build step: %s\n", timestamp(), step.String())
	fmt.Fprintf(&b, "  Exit status: %d\n", result.ExitStatus)
	fmt.Fprintf(&b, "  Duration:    %.3fs\n", result.Duration.Seconds())
	if err != nil {
		fmt.Fprintf(&b, "  Error:       %v\n", err)
	}
	writeBlock(&b, "stdout", result.Stdout)
	writeBlock(&b, "stderr", result.Stderr)

	fl.writeRunLog(b.String())
}

// LogFixtureResult records one fixture outcome with its captured output.
func (fl *FileLogger) LogFixtureResult(result models.TestResult) {
	if !fl.shouldLog("info") {
		return
	}

	status := "PASS"
	if !result.Passed {
		status = "FAIL"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s (exit %d, %.3fs)\n", timestamp(), status, result.Key, result.ExitStatus, result.Duration.Seconds())
	if result.File.Path != "" && result.File.Path != result.Key {
		fmt.Fprintf(&b, "  Path: %s\n", result.File.Path)
	}
	writeBlock(&b, "output", result.Output)

	fl.writeRunLog(b.String())
}

// LogSummary logs the run summary with final statistics at INFO level.
func (fl *FileLogger) LogSummary(summary models.RunSummary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === RUN SUMMARY ===\n", ts)
	fmt.Fprintf(&b, "[%s] Run ID:       %s\n", ts, summary.ID)
	fmt.Fprintf(&b, "[%s] Fixture root: %s\n", ts, summary.FixtureRoot)
	fmt.Fprintf(&b, "[%s] Executable:   %s\n", ts, summary.Executable)
	fmt.Fprintf(&b, "[%s] Build steps:  %d\n", ts, summary.BuildSteps)

	status := "BUILD FAILED"
	if summary.BuildOK {
		total, passed, failed := 0, 0, 0
		if summary.Results != nil {
			total = summary.Results.Len()
			passed, failed = summary.Results.Counts()
		}
		fmt.Fprintf(&b, "[%s] Fixtures:     %d\n", ts, total)
		fmt.Fprintf(&b, "[%s] Passed:       %d\n", ts, passed)
		fmt.Fprintf(&b, "[%s] Failed:       %d\n", ts, failed)
		status = fmt.Sprintf("COMPLETE (%d/%d passed)", passed, total)
		if summary.Results != nil {
			for _, key := range summary.Results.Collisions() {
				fmt.Fprintf(&b, "[%s] Overwritten:  %s\n", ts, key)
			}
		}
	}
	for _, err := range summary.ScanErrors {
		fmt.Fprintf(&b, "[%s] Skipped:      %v\n", ts, err)
	}
	fmt.Fprintf(&b, "[%s] Total time:   %.1fs\n", ts, summary.Duration.Seconds())
	fmt.Fprintf(&b, "[%s] Status:       %s\n", ts, status)
	fmt.Fprintf(&b, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(b.String())
}

// writeBlock appends captured output indented under a label; empty output is omitted.
func writeBlock(b *strings.Builder, label, text string) {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
// Color codes from compilers or the program under test are stripped.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(stripansi.Strip(message))
		fl.runLog.Sync()
	}
}
