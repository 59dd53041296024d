package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/neznayu/harness/internal/filelock"
	"github.com/neznayu/harness/internal/models"
	"gopkg.in/yaml.v3"
)

// FixturesConfig narrows which files under the fixture root are run
type FixturesConfig struct {
	// Extensions limits fixtures to these extensions (empty = every file)
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names that are never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// ExcludeHidden skips directories starting with "."
	ExcludeHidden bool `yaml:"exclude_hidden"`

	// Pattern is a regex matched against the file name without extension
	Pattern string `yaml:"pattern"`
}

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents harness configuration options.
// Relative paths are resolved against the directory the harness runs in.
type Config struct {
	// FixtureRoot is the directory tree whose files are run through the executable
	FixtureRoot string `yaml:"fixture_root"`

	// BuildDir is where the build toolchain puts its output
	BuildDir string `yaml:"build_dir"`

	// Executable is the program under test, produced by the build
	Executable string `yaml:"executable"`

	// BuildSteps run in order before any fixture; the first failure aborts the run
	BuildSteps []models.Command `yaml:"build_steps"`

	// SkipBuild runs fixtures against the existing executable
	SkipBuild bool `yaml:"skip_build"`

	// FailOnBuildError makes a failed build exit non-zero instead of returning normally
	FailOnBuildError bool `yaml:"fail_on_build_error"`

	// Timeout bounds the whole run (0 = no limit)
	Timeout time.Duration `yaml:"timeout"`

	// CommandTimeout bounds each build step and fixture invocation (0 = no limit)
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// Parallelism is the number of concurrent fixture invocations (1 = sequential)
	Parallelism int `yaml:"parallelism"`

	// KeyBy selects the result key: "path" (relative path) or "name" (base name)
	KeyBy string `yaml:"key_by"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// LockFile guards against two harness runs sharing one build directory
	LockFile string `yaml:"lock_file"`

	// Fixtures filters the fixture walk
	Fixtures FixturesConfig `yaml:"fixtures"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultBuildSteps mirrors the configure-then-compile layout of a CMake
// project whose sources sit one level above the invocation directory.
func DefaultBuildSteps(buildDir string) []models.Command {
	return []models.Command{
		{Name: "create build directory", Executable: "mkdir", Args: []string{"-p", buildDir}},
		{Name: "configure", Dir: buildDir, Executable: "cmake", Args: []string{".."}},
		{Name: "compile", Dir: buildDir, Executable: "make"},
	}
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	home := HomeDir(".")
	buildDir := filepath.Join("..", "build")

	return &Config{
		FixtureRoot:    "closure",
		BuildDir:       buildDir,
		Executable:     filepath.Join(buildDir, "NeZnayu"),
		BuildSteps:     DefaultBuildSteps(buildDir),
		SkipBuild:      false,
		Timeout:        0,
		CommandTimeout: 0,
		Parallelism:    1,
		KeyBy:          models.KeyByPath,
		LogLevel:       "info",
		LogDir:         filepath.Join(home, "logs"),
		LockFile:       filepath.Join(home, "harness.lock"),
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(home, "history.db"),
		},
	}
}

// yamlConfig mirrors Config with durations as strings ("30s", "2m").
type yamlConfig struct {
	FixtureRoot    string           `yaml:"fixture_root,omitempty"`
	BuildDir       string           `yaml:"build_dir,omitempty"`
	Executable     string           `yaml:"executable,omitempty"`
	BuildSteps     []models.Command `yaml:"build_steps,omitempty"`
	SkipBuild      bool             `yaml:"skip_build,omitempty"`
	FailOnBuild    bool             `yaml:"fail_on_build_error,omitempty"`
	Timeout        string           `yaml:"timeout,omitempty"`
	CommandTimeout string           `yaml:"command_timeout,omitempty"`
	Parallelism    int              `yaml:"parallelism,omitempty"`
	KeyBy          string           `yaml:"key_by,omitempty"`
	LogLevel       string           `yaml:"log_level,omitempty"`
	LogDir         string           `yaml:"log_dir,omitempty"`
	LockFile       string           `yaml:"lock_file,omitempty"`
	Fixtures       FixturesConfig   `yaml:"fixtures,omitempty"`
	History        HistoryConfig    `yaml:"history,omitempty"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.FixtureRoot != "" {
		cfg.FixtureRoot = yamlCfg.FixtureRoot
	}
	if yamlCfg.Executable != "" {
		cfg.Executable = yamlCfg.Executable
	}
	if yamlCfg.BuildDir != "" {
		cfg.BuildDir = yamlCfg.BuildDir
		// Steps and executable follow a relocated build directory unless
		// the file spells them out.
		cfg.BuildSteps = DefaultBuildSteps(yamlCfg.BuildDir)
		if yamlCfg.Executable == "" {
			cfg.Executable = filepath.Join(yamlCfg.BuildDir, "NeZnayu")
		}
	}
	if yamlCfg.SkipBuild {
		cfg.SkipBuild = true
	}
	if yamlCfg.FailOnBuild {
		cfg.FailOnBuildError = true
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.CommandTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.CommandTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid command_timeout format %q: %w", yamlCfg.CommandTimeout, err)
		}
		cfg.CommandTimeout = timeout
	}
	if yamlCfg.Parallelism != 0 {
		cfg.Parallelism = yamlCfg.Parallelism
	}
	if yamlCfg.KeyBy != "" {
		cfg.KeyBy = yamlCfg.KeyBy
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LockFile != "" {
		cfg.LockFile = yamlCfg.LockFile
	}
	cfg.Fixtures = yamlCfg.Fixtures

	// Sections whose zero values are meaningful (an empty build_steps list,
	// an empty log_dir, history.enabled: false) are applied only when the key
	// is present in the file.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["build_steps"]; exists {
			cfg.BuildSteps = yamlCfg.BuildSteps
		}
		if _, exists := rawMap["log_dir"]; exists {
			cfg.LogDir = yamlCfg.LogDir
		}
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .harness/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(ConfigPath(dir))
}

// FlagOverrides carries CLI flag values; nil fields were not set on the command line.
type FlagOverrides struct {
	FixtureRoot    *string
	BuildDir       *string
	Executable     *string
	SkipBuild      *bool
	FailOnBuild    *bool
	Timeout        *time.Duration
	CommandTimeout *time.Duration
	Parallelism    *int
	KeyBy          *string
	LogLevel       *string
	LogDir         *string
	RecordHistory  *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.BuildDir != nil && *f.BuildDir != c.BuildDir {
		// Steps and executable still at their defaults follow the new directory
		if sameSteps(c.BuildSteps, DefaultBuildSteps(c.BuildDir)) {
			c.BuildSteps = DefaultBuildSteps(*f.BuildDir)
		}
		if c.Executable == filepath.Join(c.BuildDir, "NeZnayu") {
			c.Executable = filepath.Join(*f.BuildDir, "NeZnayu")
		}
		c.BuildDir = *f.BuildDir
	}
	if f.FixtureRoot != nil {
		c.FixtureRoot = *f.FixtureRoot
	}
	if f.Executable != nil {
		c.Executable = *f.Executable
	}
	if f.SkipBuild != nil {
		c.SkipBuild = *f.SkipBuild
	}
	if f.FailOnBuild != nil {
		c.FailOnBuildError = *f.FailOnBuild
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.CommandTimeout != nil {
		c.CommandTimeout = *f.CommandTimeout
	}
	if f.Parallelism != nil {
		c.Parallelism = *f.Parallelism
	}
	if f.KeyBy != nil {
		c.KeyBy = *f.KeyBy
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.RecordHistory != nil {
		c.History.Enabled = *f.RecordHistory
	}
}

func sameSteps(a, b []models.Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.FixtureRoot == "" {
		return fmt.Errorf("fixture_root cannot be empty")
	}
	if c.Executable == "" {
		return fmt.Errorf("executable cannot be empty")
	}

	for i, step := range c.BuildSteps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("build_steps[%d] (%s): %w", i, step.Name, err)
		}
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.KeyBy != models.KeyByPath && c.KeyBy != models.KeyByName {
		return fmt.Errorf("invalid key_by %q, must be one of: %s, %s", c.KeyBy, models.KeyByPath, models.KeyByName)
	}

	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be >= 1, got %d", c.Parallelism)
	}

	// Timeouts can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must be >= 0, got %v", c.CommandTimeout)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// WriteConfig writes cfg as YAML to path atomically, creating parent directories.
func WriteConfig(path string, cfg *Config) error {
	out := yamlConfig{
		FixtureRoot: cfg.FixtureRoot,
		BuildDir:    cfg.BuildDir,
		Executable:  cfg.Executable,
		BuildSteps:  cfg.BuildSteps,
		SkipBuild:   cfg.SkipBuild,
		FailOnBuild: cfg.FailOnBuildError,
		Parallelism: cfg.Parallelism,
		KeyBy:       cfg.KeyBy,
		LogLevel:    cfg.LogLevel,
		LogDir:      cfg.LogDir,
		LockFile:    cfg.LockFile,
		Fixtures:    cfg.Fixtures,
		History:     cfg.History,
	}
	if cfg.Timeout > 0 {
		out.Timeout = cfg.Timeout.String()
	}
	if cfg.CommandTimeout > 0 {
		out.CommandTimeout = cfg.CommandTimeout.String()
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return filelock.AtomicWrite(path, data)
}
