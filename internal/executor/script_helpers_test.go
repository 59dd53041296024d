package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeScript writes an executable /bin/sh script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// fakeInterpreter is a stand-in for the program under test: it prints the
// first line of the fixture, or fails the way the interpreter does on
// fixtures whose first line is "error <status> <message>".
const fakeInterpreter = `first=$(head -n 1 "$1") || exit 74
case "$first" in
  error*)
    set -- $first
    status=$2
    shift 2
    echo "$*" >&2
    exit $status
    ;;
esac
echo "$first"
`
