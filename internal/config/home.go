package config

import (
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the harness state directory.
const HomeEnvVar = "HARNESS_HOME"

// HomeDir returns the directory holding harness state (config, logs, history, lock).
// Priority order:
//  1. HARNESS_HOME environment variable (if set)
//  2. <dir>/.harness
//
// The directory is not created; callers that write into it do so lazily.
func HomeDir(dir string) string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}
	return filepath.Join(dir, ".harness")
}

// ConfigPath returns the config file location for dir.
func ConfigPath(dir string) string {
	return filepath.Join(HomeDir(dir), "config.yaml")
}
