// Package tui renders benchmark output: styled reports and chunk progress.
// Simple streaming output, no interactive TUI.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/bench"
	"github.com/dqbench/dqbench/pkg/verify"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// NewRowProgress creates a progress bar over a known number of rows.
func NewRowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

// PrintWindow renders one window's metrics as a streaming line.
func PrintWindow(wm model.WindowMetrics) {
	fmt.Printf("%s %10d-%-10d %s accuracy %.6f %s completeness %.4f %s timeliness %.4f\n",
		mutedStyle.Render("window"),
		wm.Key.FirstValueID, wm.Key.LastValueID,
		mutedStyle.Render("|"), wm.Accuracy,
		mutedStyle.Render("|"), wm.Completeness,
		mutedStyle.Render("|"), wm.Timeliness)
}

// PrintMeasureSummary renders the totals of a measurement run.
func PrintMeasureSummary(rows int64, windows int, dropped int, skipped int64) {
	fmt.Println()
	fmt.Printf("%s %d rows, %d windows", titleStyle.Render("Processed"), rows, windows)
	if dropped > 0 {
		fmt.Printf(", %s", mutedStyle.Render(fmt.Sprintf("%d trailing rows dropped (partial window)", dropped)))
	}
	if skipped > 0 {
		fmt.Printf(", %s", accentStyle.Render(fmt.Sprintf("%d malformed rows skipped", skipped)))
	}
	fmt.Println()
}

// PrintVerifyReport renders the comparison outcome.
func PrintVerifyReport(report *verify.Report) {
	fmt.Println()
	if report.OK() {
		fmt.Println(successStyle.Render(fmt.Sprintf(
			"✓ Verified: %d windows match within tolerance", report.WindowsCompared)))
		return
	}

	fmt.Println(accentStyle.Render("✗ Verification found discrepancies"))
	fmt.Printf("  windows compared: %d, matched: %d\n", report.WindowsCompared, report.WindowsMatched)

	for _, metric := range []string{verify.MetricAccuracy, verify.MetricCompleteness, verify.MetricTimeliness} {
		if n := report.MismatchesPerMetric[metric]; n > 0 {
			fmt.Printf("  %-13s %d mismatched window(s)\n", metric+":", n)
		}
	}
	for _, mm := range report.Mismatches {
		fmt.Printf("  %s\n", mutedStyle.Render(mm.Error()))
	}
	for _, mw := range report.Missing {
		fmt.Printf("  %s\n", mutedStyle.Render(mw.Error()))
	}
}

// PrintLatencyStats renders a benchmark analysis.
func PrintLatencyStats(name string, stats *bench.LatencyStats) {
	fmt.Printf("%s %s\n", titleStyle.Render("Result:"), name)
	fmt.Printf("  windows:    %d\n", stats.Records)
	fmt.Printf("  latency:    avg %.4f ms (min %.4f, max %.4f)\n",
		stats.AvgLatency, stats.MinLatency, stats.MaxLatency)
	fmt.Printf("  throughput: %.4f windows/s\n", stats.Throughput)
}
