// Package logger provides logging implementations for harness runs.
//
// Both loggers report build steps, fixture outcomes and the run summary at
// fixed levels, filter by a configured minimum level, and are safe for use
// from the parallel fixture runner.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/neznayu/harness/internal/display"
	"github.com/neznayu/harness/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs harness progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output follows display.ColorEnabled: terminals only, never with NO_COLOR.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: display.ColorEnabled(writer),
	}
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.writeLine(level, message)
}

// writeLine formats one log line. Caller holds the mutex.
func (cl *ConsoleLogger) writeLine(level, message string) {
	ts := timestamp()
	if cl.colorOutput {
		level = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogBuildStep logs a finished build step.
// Success is logged at DEBUG, failure at ERROR together with the step's
// stderr. Captured output of every step is logged at TRACE.
func (cl *ConsoleLogger) LogBuildStep(step models.Command, result models.CommandResult, err error) {
	if cl.writer == nil {
		return
	}

	failed := err != nil || !result.Succeeded()
	level := "debug"
	if failed {
		level = "error"
	}
	if !cl.shouldLog(level) && !cl.shouldLog("trace") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.shouldLog(level) {
		status := "ok"
		switch {
		case err != nil:
			status = "error: " + err.Error()
		case failed:
			status = fmt.Sprintf("exit status %d", result.ExitStatus)
		}
		if cl.colorOutput {
			if failed {
				status = color.New(color.FgRed).Sprint(status)
			} else {
				status = color.New(color.FgGreen).Sprint(status)
			}
		}
		cl.writeLine(strings.ToUpper(level), fmt.Sprintf("%s: %s (%s)", step.String(), status, formatDuration(result.Duration)))
		if failed {
			if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
				cl.writeLine("ERROR", stderr)
			}
		}
	}

	if cl.shouldLog("trace") {
		if out := strings.TrimSpace(result.Stdout); out != "" {
			cl.writeLine("TRACE", "stdout:\n"+out)
		}
		if out := strings.TrimSpace(result.Stderr); out != "" && !failed {
			cl.writeLine("TRACE", "stderr:\n"+out)
		}
	}
}

// LogFixtureResult logs one fixture outcome at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] PASS <key> (<duration>)"
func (cl *ConsoleLogger) LogFixtureResult(result models.TestResult) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := "PASS"
	if !result.Passed {
		status = "FAIL"
	}
	if cl.colorOutput {
		if result.Passed {
			status = color.New(color.FgGreen).Sprint(status)
		} else {
			status = color.New(color.FgRed).Sprint(status)
		}
	}

	msg := fmt.Sprintf("%s %s (%s)", status, result.Key, formatDuration(result.Duration))
	if !result.Passed {
		msg += fmt.Sprintf(" exit status %d", result.ExitStatus)
	}
	cl.writeLine("DEBUG", msg)
}

// LogSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	header := "=== Run Summary ==="
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
	}
	cl.writeLine("INFO", header)
	cl.writeLine("INFO", "Run: "+summary.ID)

	if !summary.BuildOK {
		msg := fmt.Sprintf("Build failed after %d step(s); no fixtures were run", summary.BuildSteps)
		if cl.colorOutput {
			msg = color.New(color.FgRed).Sprint(msg)
		}
		cl.writeLine("INFO", msg)
		cl.writeLine("INFO", "Duration: "+formatDuration(summary.Duration))
		return
	}

	total, passed, failed := 0, 0, 0
	if summary.Results != nil {
		total = summary.Results.Len()
		passed, failed = summary.Results.Counts()
	}

	passedText := fmt.Sprintf("Passed: %d", passed)
	failedText := fmt.Sprintf("Failed: %d", failed)
	if cl.colorOutput {
		passedText = color.New(color.FgGreen).Sprint(passedText)
		if failed > 0 {
			failedText = color.New(color.FgRed).Sprint(failedText)
		}
	}

	cl.writeLine("INFO", fmt.Sprintf("Fixtures: %d", total))
	cl.writeLine("INFO", passedText)
	cl.writeLine("INFO", failedText)
	if n := len(summary.ScanErrors); n > 0 {
		cl.writeLine("INFO", fmt.Sprintf("Skipped entries: %d", n))
	}
	cl.writeLine("INFO", "Duration: "+formatDuration(summary.Duration))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogInfo is a no-op implementation.
func (n *NoOpLogger) LogInfo(message string) {}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {}

// LogError is a no-op implementation.
func (n *NoOpLogger) LogError(message string) {}

// LogBuildStep is a no-op implementation.
func (n *NoOpLogger) LogBuildStep(step models.Command, result models.CommandResult, err error) {}

// LogFixtureResult is a no-op implementation.
func (n *NoOpLogger) LogFixtureResult(result models.TestResult) {}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(summary models.RunSummary) {}
