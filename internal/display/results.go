package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/neznayu/harness/internal/models"
)

// ReportOptions controls result rendering
type ReportOptions struct {
	Color bool // Colour keys green/red by outcome
}

// ColorEnabled reports whether w is a terminal that should receive color.
// NO_COLOR disables color unconditionally.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(enabled bool, attr color.Attribute, s string) string {
	if !enabled {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// PrintResults prints "Test results:" followed by one block per key, in
// sorted key order:
//
//	<key>:
//	<output>
//
// Blocks are separated by a blank line. A nil set prints only the header.
func PrintResults(w io.Writer, set *models.ResultSet, opts ReportOptions) error {
	var b strings.Builder
	b.WriteString("Test results:\n")

	if set != nil {
		for _, r := range set.Results() {
			attr := color.FgGreen
			if !r.Passed {
				attr = color.FgRed
			}
			b.WriteString(paint(opts.Color, attr, r.Key+":"))
			b.WriteString("\n")
			b.WriteString(r.Output)
			b.WriteString("\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PrintSummary prints "N fixtures: P passed, F failed" and, when keys were
// overwritten by same-named fixtures, a warning listing them.
func PrintSummary(w io.Writer, set *models.ResultSet, opts ReportOptions) error {
	total, passed, failed := 0, 0, 0
	var collisions []string
	if set != nil {
		total = set.Len()
		passed, failed = set.Counts()
		collisions = set.Collisions()
	}

	noun := "fixtures"
	if total == 1 {
		noun = "fixture"
	}
	passedText := paint(opts.Color, color.FgGreen, fmt.Sprintf("%d passed", passed))
	failedText := fmt.Sprintf("%d failed", failed)
	if failed > 0 {
		failedText = paint(opts.Color, color.FgRed, failedText)
	}
	if _, err := fmt.Fprintf(w, "%d %s: %s, %s\n", total, noun, passedText, failedText); err != nil {
		return err
	}

	if len(collisions) > 0 {
		warnCollisions(collisions).Display(w, opts.Color)
	}
	return nil
}

// PrintBuildFailure reports a failed build step and its diagnostics.
func PrintBuildFailure(w io.Writer, err error, opts ReportOptions) {
	fmt.Fprintln(w, paint(opts.Color, color.FgRed, "Build commands failed. Exiting."))
	fmt.Fprintln(w, err)
}
