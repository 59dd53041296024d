package executor

import "fmt"

// graceful.go provides helpers for the warn-and-continue pattern used for
// non-fatal problems such as unreadable fixture directories.

// GracefulWarn logs a warning if logger is non-nil, using the given format and args.
func GracefulWarn(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.LogWarn(fmt.Sprintf(format, args...))
	}
}

// GracefulError logs an error if logger is non-nil.
func GracefulError(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.LogError(fmt.Sprintf(format, args...))
	}
}

// GracefulInfo logs an info message if logger is non-nil.
// Companion to GracefulWarn for consistent logger nil-checking.
func GracefulInfo(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.LogInfo(fmt.Sprintf(format, args...))
	}
}
