package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/neznayu/harness/internal/history"
)

// PrintRunTable renders recorded runs, newest first.
func PrintRunTable(w io.Writer, runs []*history.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Run", "Started", "Build", "Fixtures", "Passed", "Failed", "Duration"})
	for _, run := range runs {
		build := "ok"
		if !run.BuildOK {
			build = "FAILED"
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			build,
			run.Total,
			run.Passed,
			run.Failed,
			run.Duration.Round(time.Millisecond),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// PrintRunDetail renders one run's header followed by a table of its results.
func PrintRunDetail(w io.Writer, run *history.RunRecord, results []*history.ResultRecord) {
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Fixtures:   %s\n", run.FixtureRoot)
	fmt.Fprintf(w, "Executable: %s\n", run.Executable)
	if !run.BuildOK {
		fmt.Fprintln(w, "Build:      FAILED")
		return
	}
	fmt.Fprintf(w, "Result:     %d passed, %d failed\n", run.Passed, run.Failed)

	if len(results) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Key", "Status", "Exit", "Output"})
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		t.AppendRow(table.Row{r.Key, status, r.ExitStatus, firstLine(r.Output, 60)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// firstLine returns the first line of s, truncated to max runes with an
// ellipsis when s has more content.
func firstLine(s string, max int) string {
	line, rest, multi := strings.Cut(s, "\n")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	if multi && strings.TrimSpace(rest) != "" {
		return line + " …"
	}
	return line
}
