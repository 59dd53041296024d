package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/neznayu/harness/internal/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	t.Setenv(HomeEnvVar, "")
	cfg := DefaultConfig()

	if cfg.FixtureRoot != "closure" {
		t.Errorf("FixtureRoot = %q, want %q", cfg.FixtureRoot, "closure")
	}
	if cfg.BuildDir != filepath.Join("..", "build") {
		t.Errorf("BuildDir = %q, want ../build", cfg.BuildDir)
	}
	if cfg.Executable != filepath.Join("..", "build", "NeZnayu") {
		t.Errorf("Executable = %q, want ../build/NeZnayu", cfg.Executable)
	}
	if len(cfg.BuildSteps) != 3 {
		t.Fatalf("len(BuildSteps) = %d, want 3", len(cfg.BuildSteps))
	}
	if got := cfg.BuildSteps[1].String(); got != "cd ../build && cmake .." {
		t.Errorf("BuildSteps[1] = %q, want %q", got, "cd ../build && cmake ..")
	}
	if cfg.Timeout != 0 || cfg.CommandTimeout != 0 {
		t.Errorf("timeouts = %v/%v, want 0/0", cfg.Timeout, cfg.CommandTimeout)
	}
	if cfg.Parallelism != 1 {
		t.Errorf("Parallelism = %d, want 1", cfg.Parallelism)
	}
	if cfg.KeyBy != models.KeyByPath {
		t.Errorf("KeyBy = %q, want %q", cfg.KeyBy, models.KeyByPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != filepath.Join(".harness", "logs") {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, ".harness/logs")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestDefaultConfigHonoursHomeEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	cfg := DefaultConfig()
	if cfg.LogDir != filepath.Join(home, "logs") {
		t.Errorf("LogDir = %q, want under %q", cfg.LogDir, home)
	}
	if cfg.History.DBPath != filepath.Join(home, "history.db") {
		t.Errorf("History.DBPath = %q, want under %q", cfg.History.DBPath, home)
	}
	if got := ConfigPath("/anywhere"); got != filepath.Join(home, "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfigFile(t, `fixture_root: tests/lox
executable: ./bin/lox
timeout: 30m
command_timeout: 5s
parallelism: 4
key_by: name
log_level: debug
log_dir: /tmp/logs
fixtures:
  extensions: [lox]
  exclude_dirs: [benchmark]
  exclude_hidden: true
history:
  enabled: true
  db_path: /tmp/h.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.FixtureRoot != "tests/lox" {
		t.Errorf("FixtureRoot = %q, want %q", cfg.FixtureRoot, "tests/lox")
	}
	if cfg.Executable != "./bin/lox" {
		t.Errorf("Executable = %q, want %q", cfg.Executable, "./bin/lox")
	}
	if cfg.Timeout != 30*time.Minute {
		t.Errorf("Timeout = %v, want 30m", cfg.Timeout)
	}
	if cfg.CommandTimeout != 5*time.Second {
		t.Errorf("CommandTimeout = %v, want 5s", cfg.CommandTimeout)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", cfg.Parallelism)
	}
	if cfg.KeyBy != models.KeyByName {
		t.Errorf("KeyBy = %q, want %q", cfg.KeyBy, models.KeyByName)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/tmp/logs")
	}
	if len(cfg.Fixtures.Extensions) != 1 || cfg.Fixtures.Extensions[0] != "lox" {
		t.Errorf("Fixtures.Extensions = %v, want [lox]", cfg.Fixtures.Extensions)
	}
	if !cfg.Fixtures.ExcludeHidden {
		t.Error("Fixtures.ExcludeHidden = false, want true")
	}
	if !cfg.History.Enabled || cfg.History.DBPath != "/tmp/h.db" {
		t.Errorf("History = %+v, want enabled at /tmp/h.db", cfg.History)
	}
	// Build steps were not mentioned so the defaults survive.
	if len(cfg.BuildSteps) != 3 {
		t.Errorf("len(BuildSteps) = %d, want 3 defaults", len(cfg.BuildSteps))
	}
}

func TestLoadConfigBuildSteps(t *testing.T) {
	path := writeConfigFile(t, `build_steps:
  - name: compile
    dir: out
    command: ninja
    args: [-j, "4"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.BuildSteps) != 1 {
		t.Fatalf("len(BuildSteps) = %d, want 1", len(cfg.BuildSteps))
	}
	step := cfg.BuildSteps[0]
	if step.Name != "compile" || step.Dir != "out" || step.Executable != "ninja" {
		t.Errorf("BuildSteps[0] = %+v", step)
	}
	if got := step.String(); got != "cd out && ninja -j 4" {
		t.Errorf("BuildSteps[0].String() = %q", got)
	}
}

func TestLoadConfigEmptyBuildStepsDisablesBuild(t *testing.T) {
	path := writeConfigFile(t, "build_steps: []\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.BuildSteps) != 0 {
		t.Errorf("len(BuildSteps) = %d, want 0", len(cfg.BuildSteps))
	}
}

func TestLoadConfigBuildDirRelocatesDefaults(t *testing.T) {
	path := writeConfigFile(t, "build_dir: out\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Executable != filepath.Join("out", "NeZnayu") {
		t.Errorf("Executable = %q, want out/NeZnayu", cfg.Executable)
	}
	if got := cfg.BuildSteps[2].String(); got != "cd out && make" {
		t.Errorf("BuildSteps[2] = %q, want %q", got, "cd out && make")
	}
}

func TestLoadConfigLogDirExplicitlyEmpty(t *testing.T) {
	path := writeConfigFile(t, "log_dir: \"\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty (file logging disabled)", cfg.LogDir)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFailOnBuildError(t *testing.T) {
	if DefaultConfig().FailOnBuildError {
		t.Fatal("a failed build must not fail the process by default")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fail_on_build_error: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.FailOnBuildError {
		t.Error("FailOnBuildError = false, want true")
	}
}

func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.FixtureRoot != "closure" {
		t.Errorf("FixtureRoot = %q, want default", cfg.FixtureRoot)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "fixture_root: [unclosed\n", wantErr: "failed to parse"},
		{name: "bad timeout", content: "timeout: soon\n", wantErr: "invalid timeout"},
		{name: "bad command timeout", content: "command_timeout: 3 parsecs\n", wantErr: "invalid command_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	t.Setenv(HomeEnvVar, "")
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".harness"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".harness", "config.yaml"), []byte("fixture_root: cases\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.FixtureRoot != "cases" {
		t.Errorf("FixtureRoot = %q, want %q", cfg.FixtureRoot, "cases")
	}
}

// TestMergeWithFlags verifies CLI flags override config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"

	root := "other"
	skip := true
	parallel := 8
	timeout := 2 * time.Minute
	keyBy := models.KeyByName
	record := true
	failOnBuild := true

	cfg.MergeWithFlags(FlagOverrides{
		FixtureRoot:   &root,
		SkipBuild:     &skip,
		FailOnBuild:   &failOnBuild,
		Parallelism:   &parallel,
		Timeout:       &timeout,
		KeyBy:         &keyBy,
		RecordHistory: &record,
	})

	if cfg.FixtureRoot != "other" {
		t.Errorf("FixtureRoot = %q, want %q", cfg.FixtureRoot, "other")
	}
	if !cfg.SkipBuild {
		t.Error("SkipBuild = false, want true")
	}
	if cfg.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", cfg.Parallelism)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
	}
	if cfg.KeyBy != models.KeyByName {
		t.Errorf("KeyBy = %q, want %q", cfg.KeyBy, models.KeyByName)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if !cfg.FailOnBuildError {
		t.Error("FailOnBuildError = false, want true")
	}
	// Unset flags leave config values alone.
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

// TestConfigValidation tests config validation rules
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}, wantErr: false},
		{name: "empty fixture root", modify: func(c *Config) { c.FixtureRoot = "" }, wantErr: true},
		{name: "empty executable", modify: func(c *Config) { c.Executable = "" }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "trace level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: false},
		{name: "bad key_by", modify: func(c *Config) { c.KeyBy = "hash" }, wantErr: true},
		{name: "zero parallelism", modify: func(c *Config) { c.Parallelism = 0 }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "negative command timeout", modify: func(c *Config) { c.CommandTimeout = -time.Second }, wantErr: true},
		{name: "step without command", modify: func(c *Config) {
			c.BuildSteps = append(c.BuildSteps, models.Command{Name: "broken"})
		}, wantErr: true},
		{name: "no build steps", modify: func(c *Config) { c.BuildSteps = nil }, wantErr: false},
		{name: "history without db", modify: func(c *Config) {
			c.History.Enabled = true
			c.History.DBPath = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".harness", "config.yaml")

	cfg := DefaultConfig()
	cfg.CommandTimeout = 10 * time.Second
	cfg.Fixtures.Extensions = []string{".lox"}

	if err := WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.CommandTimeout != 10*time.Second {
		t.Errorf("CommandTimeout = %v, want 10s", loaded.CommandTimeout)
	}
	if len(loaded.BuildSteps) != len(cfg.BuildSteps) {
		t.Fatalf("len(BuildSteps) = %d, want %d", len(loaded.BuildSteps), len(cfg.BuildSteps))
	}
	for i := range cfg.BuildSteps {
		if loaded.BuildSteps[i].String() != cfg.BuildSteps[i].String() {
			t.Errorf("BuildSteps[%d] = %q, want %q", i, loaded.BuildSteps[i], cfg.BuildSteps[i])
		}
	}
}

func TestMergeWithFlagsBuildDir(t *testing.T) {
	cfg := DefaultConfig()
	out := "out"
	cfg.MergeWithFlags(FlagOverrides{BuildDir: &out})

	if cfg.BuildDir != "out" {
		t.Errorf("BuildDir = %q, want %q", cfg.BuildDir, "out")
	}
	if cfg.Executable != filepath.Join("out", "NeZnayu") {
		t.Errorf("Executable = %q, want out/NeZnayu", cfg.Executable)
	}
	if got := cfg.BuildSteps[1].String(); got != "cd out && cmake .." {
		t.Errorf("BuildSteps[1] = %q", got)
	}

	// Customised steps and executable are left alone.
	cfg = DefaultConfig()
	cfg.Executable = "/opt/lox"
	cfg.BuildSteps = []models.Command{{Executable: "ninja"}}
	cfg.MergeWithFlags(FlagOverrides{BuildDir: &out})
	if cfg.Executable != "/opt/lox" {
		t.Errorf("Executable = %q, want unchanged", cfg.Executable)
	}
	if len(cfg.BuildSteps) != 1 || cfg.BuildSteps[0].Executable != "ninja" {
		t.Errorf("BuildSteps = %v, want unchanged", cfg.BuildSteps)
	}
}
