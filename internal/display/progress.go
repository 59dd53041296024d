package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/neznayu/harness/internal/models"
)

// RenameProgress prints extension rewrites as they happen
type RenameProgress struct {
	writer  io.Writer
	dryRun  bool
	colored bool
	count   int
}

// NewRenameProgress creates a RenameProgress. In dry-run mode lines describe
// planned renames instead of performed ones.
func NewRenameProgress(w io.Writer, dryRun, colored bool) *RenameProgress {
	return &RenameProgress{writer: w, dryRun: dryRun, colored: colored}
}

// Step prints one rename: "  [N] old -> new"
func (p *RenameProgress) Step(rec models.RenameRecord) {
	p.count++
	line := fmt.Sprintf("  [%d] %s -> %s", p.count, rec.OldPath, rec.NewPath)
	fmt.Fprintln(p.writer, paint(p.colored, color.FgCyan, line))
}

// Complete prints the closing count.
func (p *RenameProgress) Complete() {
	noun := "files"
	if p.count == 1 {
		noun = "file"
	}
	if p.dryRun {
		fmt.Fprintf(p.writer, "Would rename %d %s (dry run)\n", p.count, noun)
		return
	}
	fmt.Fprintf(p.writer, "%s Renamed %d %s\n", paint(p.colored, color.FgGreen, "✓"), p.count, noun)
}
