package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Affected keys or paths (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning, in yellow when colored is set.
func (w Warning) Display(out io.Writer, colored bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, item))
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, paint(colored, color.FgYellow, b.String()))
}

// warnCollisions reports keys whose earlier results were overwritten.
func warnCollisions(keys []string) Warning {
	seen := make(map[string]bool, len(keys))
	var unique []string
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}
	return Warning{
		Title:      fmt.Sprintf("%d result key(s) shared by more than one fixture", len(unique)),
		Message:    "Only the last fixture run under each key is reported.",
		Items:      unique,
		Suggestion: "Use key_by: path to report every fixture separately",
	}
}

// WarnSkipped reports entries the fixture walk could not read.
func WarnSkipped(errs []error) Warning {
	items := make([]string, 0, len(errs))
	for _, err := range errs {
		items = append(items, err.Error())
	}
	return Warning{
		Title: fmt.Sprintf("%d fixture entr%s skipped", len(errs), pluralY(len(errs))),
		Items: items,
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
