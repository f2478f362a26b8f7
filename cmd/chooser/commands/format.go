package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/chooser/internal/study"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	singleLine = "───────────────────────────────────────────────────────────"
	doubleLine = "═══════════════════════════════════════════════════════════"
)

// KeyValue is one header row
type KeyValue struct {
	Key   string
	Value string
}

// PrintHeader prints a titled block of key-value rows
func PrintHeader(w io.Writer, title string, rows []KeyValue) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)

	width := 0
	for _, r := range rows {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-*s : %s\n", width, r.Key, r.Value)
	}
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, doubleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// FormatPValue renders an optional p-value
func FormatPValue(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *p)
}

// FormatDuration rounds d for display
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// PrintStudySummary prints the criterion table of a finished study
func PrintStudySummary(w io.Writer, outcome *study.Outcome, reportPath string) {
	res := outcome.Result
	s := res.Summary

	PrintHeader(w, "Study complete", []KeyValue{
		{"Run ID", res.RunID},
		{"Markets", fmt.Sprintf("%d", outcome.Matrix.NMarkets())},
		{"Cases", fmt.Sprintf("%d", res.NCases)},
		{"Replications", fmt.Sprintf("%d", s.Replications)},
		{"Elapsed", FormatDuration(res.Elapsed)},
	})

	widths := []int{16, 10, 8, 10}
	PrintTableHeader(w, []string{"Criterion", "Perf", "p", "Chosen"}, widths)
	for _, c := range s.Criteria {
		PrintTableRow(w, []string{
			c.Name,
			fmt.Sprintf("%.4f", c.Perf),
			FormatPValue(c.PValue),
			fmt.Sprintf("%.1f%%", c.ChosenPct),
		}, widths)
	}
	PrintTableRow(w, []string{
		"Final system",
		fmt.Sprintf("%.4f", s.FinalPerf),
		FormatPValue(s.FinalPValue),
		"",
	}, widths)
	PrintTableRow(w, []string{
		"Benchmark mean",
		fmt.Sprintf("%.4f", res.BenchmarkMean),
		"",
		"",
	}, widths)

	fmt.Fprintln(w)
	PrintSuccess(w, fmt.Sprintf("Report written to %s", reportPath))
}
