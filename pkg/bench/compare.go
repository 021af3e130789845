package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RunSummary pairs a result file with its latency statistics.
type RunSummary struct {
	Name  string
	Stats *LatencyStats
}

// CompareRuns analyzes several DSMS result files. Files that fail to parse
// abort the comparison; partial comparisons would be misleading.
func CompareRuns(paths []string) ([]RunSummary, error) {
	runs := make([]RunSummary, 0, len(paths))
	for _, path := range paths {
		stats, err := Analyze(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		runs = append(runs, RunSummary{Name: name, Stats: stats})
	}
	return runs, nil
}

// WriteComparisonCSV appends run summaries to a comparison file, creating it
// with a header when absent.
func WriteComparisonCSV(path string, runs []RunSummary) error {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write([]string{"file", "avg_latency_ms", "throughput_windows_per_sec"}); err != nil {
			return err
		}
	}
	for _, run := range runs {
		record := []string{
			run.Name,
			fmt.Sprintf("%.4f", run.Stats.AvgLatency),
			fmt.Sprintf("%.4f", run.Stats.Throughput),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteComparisonXLSX writes a workbook with a summary sheet and one latency
// series per run, replacing the plots the reference tool produced.
func WriteComparisonXLSX(path string, runs []RunSummary) error {
	wb := excelize.NewFile()
	defer wb.Close()

	const summary = "Summary"
	wb.SetSheetName("Sheet1", summary)

	headers := []string{"File", "Windows", "Avg Latency (ms)", "Min (ms)", "Max (ms)", "Throughput (windows/s)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		wb.SetCellValue(summary, cell, h)
	}
	for row, run := range runs {
		values := []interface{}{
			run.Name,
			run.Stats.Records,
			run.Stats.AvgLatency,
			run.Stats.MinLatency,
			run.Stats.MaxLatency,
			run.Stats.Throughput,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			wb.SetCellValue(summary, cell, v)
		}
	}

	const latencies = "Latencies"
	if _, err := wb.NewSheet(latencies); err != nil {
		return err
	}
	for col, run := range runs {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		wb.SetCellValue(latencies, cell, run.Name)
		for row, latency := range run.Stats.Latencies {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			wb.SetCellValue(latencies, cell, latency)
		}
	}

	return wb.SaveAs(path)
}
