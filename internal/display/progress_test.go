package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/neznayu/harness/internal/models"
)

func TestRenameProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewRenameProgress(&buf, false, false)

	p.Step(models.RenameRecord{OldPath: "t/a.txt", NewPath: "t/a.lox", Applied: true})
	p.Step(models.RenameRecord{OldPath: "t/b.txt", NewPath: "t/b.lox", Applied: true})
	p.Complete()

	want := "  [1] t/a.txt -> t/a.lox\n" +
		"  [2] t/b.txt -> t/b.lox\n" +
		"✓ Renamed 2 files\n"
	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestRenameProgressDryRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewRenameProgress(&buf, true, false)
	p.Step(models.RenameRecord{OldPath: "a.txt", NewPath: "a.lox"})
	p.Complete()

	if !strings.HasSuffix(buf.String(), "Would rename 1 file (dry run)\n") {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenameProgressNothingToDo(t *testing.T) {
	var buf bytes.Buffer
	NewRenameProgress(&buf, false, false).Complete()
	if buf.String() != "✓ Renamed 0 files\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenameProgressColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewRenameProgress(&buf, false, true)
	p.Step(models.RenameRecord{OldPath: "a", NewPath: "b"})
	if !strings.Contains(buf.String(), "\x1b[36m") {
		t.Errorf("expected cyan step, got %q", buf.String())
	}
}
