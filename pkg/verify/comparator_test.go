package verify

import (
	"testing"

	"github.com/dqbench/dqbench/internal/model"
)

func makeWindows(n int) []model.WindowMetrics {
	windows := make([]model.WindowMetrics, n)
	for i := range windows {
		windows[i] = model.WindowMetrics{
			Key: model.WindowKey{
				Ordinal:      int64(i),
				FirstValueID: int64(i * 100),
				LastValueID:  int64(i*100 + 99),
			},
			Accuracy:     0.95,
			Completeness: 0.9,
			Timeliness:   0.5,
		}
	}
	return windows
}

func TestCompareIdentical(t *testing.T) {
	local := makeWindows(5)
	dsms := makeWindows(5)

	for _, byKey := range []bool{true, false} {
		report := Compare(local, dsms, Options{MatchByKey: byKey})
		if !report.OK() {
			t.Errorf("MatchByKey=%v: identical inputs reported as mismatched", byKey)
		}
		if report.WindowsCompared != 5 || report.WindowsMatched != 5 {
			t.Errorf("MatchByKey=%v: compared/matched = %d/%d, want 5/5",
				byKey, report.WindowsCompared, report.WindowsMatched)
		}
	}
}

func TestCompareWithinTolerance(t *testing.T) {
	local := makeWindows(3)
	dsms := makeWindows(3)

	// Two-decimal DSMS formatting: 0.9533 prints as 0.95.
	local[1].Accuracy = 0.9533
	dsms[1].Accuracy = 0.95

	report := Compare(local, dsms, Options{})
	if !report.OK() {
		t.Errorf("difference below tolerance reported: %v", report.Mismatches)
	}
}

func TestCompareDetectsSingleMismatch(t *testing.T) {
	local := makeWindows(5)
	dsms := makeWindows(5)
	dsms[2].Timeliness = 0.6

	report := Compare(local, dsms, Options{MatchByKey: true})

	if report.OK() {
		t.Fatal("mismatch not detected")
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("got %d mismatches, want 1", len(report.Mismatches))
	}

	mm := report.Mismatches[0]
	if mm.Metric != MetricTimeliness {
		t.Errorf("Metric = %q, want %q", mm.Metric, MetricTimeliness)
	}
	if mm.Key.Ordinal != 2 {
		t.Errorf("Ordinal = %d, want 2", mm.Key.Ordinal)
	}
	if mm.Local != 0.5 || mm.DSMS != 0.6 {
		t.Errorf("values = %v/%v, want 0.5/0.6", mm.Local, mm.DSMS)
	}
	if report.MismatchesPerMetric[MetricTimeliness] != 1 {
		t.Errorf("per-metric count = %d, want 1", report.MismatchesPerMetric[MetricTimeliness])
	}
	if report.WindowsMatched != 4 {
		t.Errorf("WindowsMatched = %d, want 4", report.WindowsMatched)
	}
}

func TestCompareMultipleMetricsOneWindow(t *testing.T) {
	local := makeWindows(2)
	dsms := makeWindows(2)
	dsms[0].Accuracy = 0.5
	dsms[0].Completeness = 0.5

	report := Compare(local, dsms, Options{})
	if len(report.Mismatches) != 2 {
		t.Fatalf("got %d mismatches, want 2", len(report.Mismatches))
	}
	if report.WindowsMatched != 1 {
		t.Errorf("WindowsMatched = %d, want 1 (a window mismatches once)", report.WindowsMatched)
	}
}

func TestCompareByKeyMissingWindows(t *testing.T) {
	local := makeWindows(4)
	dsms := makeWindows(3) // DSMS never emitted the last window

	report := Compare(local, dsms, Options{MatchByKey: true})

	if report.OK() {
		t.Fatal("missing window not detected")
	}
	if len(report.Missing) != 1 {
		t.Fatalf("got %d missing, want 1", len(report.Missing))
	}
	mw := report.Missing[0]
	if mw.MissingFrom != "dsms" {
		t.Errorf("MissingFrom = %q, want dsms", mw.MissingFrom)
	}
	if mw.Key.FirstValueID != 300 {
		t.Errorf("missing window FirstValueID = %d, want 300", mw.Key.FirstValueID)
	}
}

func TestCompareByKeyExtraDSMSWindow(t *testing.T) {
	local := makeWindows(2)
	dsms := makeWindows(3)

	report := Compare(local, dsms, Options{MatchByKey: true})
	if len(report.Missing) != 1 || report.Missing[0].MissingFrom != "local" {
		t.Errorf("Missing = %v, want one window missing from local", report.Missing)
	}
}

func TestCompareByOrdinalLengthMismatch(t *testing.T) {
	local := makeWindows(3)
	dsms := makeWindows(5)

	report := Compare(local, dsms, Options{MatchByKey: false})
	if report.WindowsCompared != 3 {
		t.Errorf("WindowsCompared = %d, want 3", report.WindowsCompared)
	}
	if len(report.Missing) != 2 {
		t.Errorf("got %d missing, want 2", len(report.Missing))
	}
}

func TestCompareDefaultToleranceApplied(t *testing.T) {
	local := makeWindows(1)
	dsms := makeWindows(1)
	dsms[0].Accuracy = local[0].Accuracy + 0.008

	report := Compare(local, dsms, Options{}) // zero tolerance falls back to default
	if !report.OK() {
		t.Error("difference of 0.008 rejected under the default tolerance")
	}

	dsms[0].Accuracy = local[0].Accuracy + 0.01
	report = Compare(local, dsms, Options{})
	if report.OK() {
		t.Error("difference of 0.01 accepted under the default tolerance")
	}
}
