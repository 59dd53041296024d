// Package display renders harness output for people: the fixture result
// report, warnings, extension rewrite progress and run history tables.
//
// Every function takes an io.Writer. Color is applied only when the caller
// asks for it; ColorEnabled decides that for a writer:
//
//	opts := display.ReportOptions{Color: display.ColorEnabled(os.Stdout)}
//	display.PrintResults(os.Stdout, summary.Results, opts)
//	display.PrintSummary(os.Stdout, summary.Results, opts)
package display
