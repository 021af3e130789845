package bench

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeBenchFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// The DSMS appends TimeInterval start/end as unnamed trailing columns, so
// data rows carry more fields than the header.
const benchContent = "accuracy,completeness,value_start,value_end,timeliness\n" +
	"0.95,0.9,0,99,0.5,1000,1100\n" +
	"0.90,0.9,100,199,0.5,1100,1300\n" +
	"0.85,0.9,200,299,0.5,1300,1400\n"

func TestAnalyze(t *testing.T) {
	path := writeBenchFile(t, "run.csv", benchContent)

	stats, err := Analyze(path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if stats.Records != 3 {
		t.Errorf("Records = %d, want 3", stats.Records)
	}

	// Latencies: 100, 200, 100.
	if stats.MinLatency != 100 || stats.MaxLatency != 200 {
		t.Errorf("min/max = %v/%v, want 100/200", stats.MinLatency, stats.MaxLatency)
	}
	wantAvg := 400.0 / 3
	if math.Abs(stats.AvgLatency-wantAvg) > 1e-9 {
		t.Errorf("AvgLatency = %v, want %v", stats.AvgLatency, wantAvg)
	}

	// Span 1000..1400 = 400ms; 3 windows over 0.4s.
	wantThroughput := 3 / 0.4
	if math.Abs(stats.Throughput-wantThroughput) > 1e-9 {
		t.Errorf("Throughput = %v, want %v", stats.Throughput, wantThroughput)
	}
}

func TestAnalyzeEmptyFile(t *testing.T) {
	path := writeBenchFile(t, "empty.csv", "")
	if _, err := Analyze(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestAnalyzeHeaderOnly(t *testing.T) {
	path := writeBenchFile(t, "header.csv", "accuracy,completeness\n")
	if _, err := Analyze(path); err == nil {
		t.Error("expected error when no rows parse")
	}
}

func TestCompareRuns(t *testing.T) {
	path1 := writeBenchFile(t, "run_a.csv", benchContent)
	path2 := writeBenchFile(t, "run_b.csv", benchContent)

	runs, err := CompareRuns([]string{path1, path2})
	if err != nil {
		t.Fatalf("CompareRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Name != "run_a" || runs[1].Name != "run_b" {
		t.Errorf("names = %q,%q, want run_a,run_b", runs[0].Name, runs[1].Name)
	}
}

func TestWriteComparisonCSVAppends(t *testing.T) {
	runPath := writeBenchFile(t, "run.csv", benchContent)
	runs, err := CompareRuns([]string{runPath})
	if err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(t.TempDir(), "comparison.csv")
	if err := WriteComparisonCSV(outPath, runs); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteComparisonCSV(outPath, runs); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	// Header once, then one row per write.
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("got %d lines, want 3 (header + 2 rows)", lines)
	}
}
