package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// interpreterScript stands in for the program under test: it prints the
// fixture's first line, or for "error <status> <message>" writes message to
// stderr and exits with status.
const interpreterScript = `#!/bin/sh
line=$(head -n 1 "$1")
case "$line" in
  error*)
    set -- $line
    shift
    status=$1
    shift
    echo "$*" >&2
    exit "$status"
    ;;
  *)
    echo "$line"
    ;;
esac
`

// project is a throwaway harness layout in a temp dir: fixtures under
// closure/, the interpreter source under src/, builds into build/.
type project struct {
	dir        string
	configPath string
}

func (p *project) path(parts ...string) string {
	return filepath.Join(append([]string{p.dir}, parts...)...)
}

func newProject(t *testing.T) *project {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}

	p := &project{dir: t.TempDir()}
	writeFile(t, p.path("src", "interp.sh"), interpreterScript, 0755)
	writeFile(t, p.path("closure", "a.lox"), "hello\n", 0644)
	writeFile(t, p.path("closure", "nested", "b.lox"), "error 70 Undefined variable 'x'.\n", 0644)

	p.writeConfig(t, fmt.Sprintf(`build_steps:
  - name: create build directory
    command: mkdir
    args: ["-p", %q]
  - name: compile
    command: cp
    args: [%q, %q]
`, p.path("build"), p.path("src", "interp.sh"), p.path("build", "NeZnayu")))
	return p
}

// writeConfig writes the config file with paths pinned inside the project,
// followed by extra YAML.
func (p *project) writeConfig(t *testing.T, extra string) {
	t.Helper()
	p.configPath = p.path(".harness", "config.yaml")
	base := fmt.Sprintf(`fixture_root: %q
executable: %q
lock_file: %q
log_dir: ""
history:
  db_path: %q
`, p.path("closure"), p.path("build", "NeZnayu"), p.path(".harness", "harness.lock"), p.path(".harness", "history.db"))
	writeFile(t, p.configPath, base+extra, 0644)
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertContains(t *testing.T, s string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}
