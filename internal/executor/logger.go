package executor

import (
	"github.com/neznayu/harness/internal/models"
)

// Logger defines the interface for logging harness progress and results.
type Logger interface {
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogBuildStep(step models.Command, result models.CommandResult, err error)
	LogFixtureResult(result models.TestResult)
	LogSummary(summary models.RunSummary)
}
