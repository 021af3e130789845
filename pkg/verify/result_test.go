package verify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeResultFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadResultCSVDSMSOrder(t *testing.T) {
	path := writeResultFile(t,
		"accuracy,completeness,value_start,value_end,timeliness\n"+
			"0.95,0.90,0,99,0.50\n"+
			"0.80,1.00,100,199,0.25\n")

	windows, err := ReadResultCSV(path, DSMSColumns)
	if err != nil {
		t.Fatalf("ReadResultCSV: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}

	w := windows[0]
	if w.Key.Ordinal != 0 || w.Key.FirstValueID != 0 || w.Key.LastValueID != 99 {
		t.Errorf("key = %+v, want ordinal 0, ids 0-99", w.Key)
	}
	if w.Accuracy != 0.95 || w.Completeness != 0.90 || w.Timeliness != 0.50 {
		t.Errorf("metrics = %v/%v/%v, want 0.95/0.90/0.50", w.Accuracy, w.Completeness, w.Timeliness)
	}

	if windows[1].Key.FirstValueID != 100 || windows[1].Key.Ordinal != 1 {
		t.Errorf("second key = %+v, want ordinal 1, first id 100", windows[1].Key)
	}
}

func TestReadResultCSVLocalOrder(t *testing.T) {
	path := writeResultFile(t,
		"value_start,value_end,accuracy,completeness,timeliness\n"+
			"0,99,0.95,0.9,0.5\n")

	windows, err := ReadResultCSV(path, LocalColumns)
	if err != nil {
		t.Fatalf("ReadResultCSV: %v", err)
	}
	w := windows[0]
	if w.Key.FirstValueID != 0 || w.Key.LastValueID != 99 || w.Accuracy != 0.95 {
		t.Errorf("parsed %+v incorrectly", w)
	}
}

func TestReadResultCSVFloatFormattedIDs(t *testing.T) {
	// Some DSMS exports format integer ids as floats.
	path := writeResultFile(t,
		"accuracy,completeness,value_start,value_end,timeliness\n"+
			"0.95,0.90,100.0,199.0,0.50\n")

	windows, err := ReadResultCSV(path, DSMSColumns)
	if err != nil {
		t.Fatalf("ReadResultCSV: %v", err)
	}
	if windows[0].Key.FirstValueID != 100 || windows[0].Key.LastValueID != 199 {
		t.Errorf("ids = %d-%d, want 100-199", windows[0].Key.FirstValueID, windows[0].Key.LastValueID)
	}
}

func TestReadResultCSVEmptyFile(t *testing.T) {
	path := writeResultFile(t, "")
	if _, err := ReadResultCSV(path, DSMSColumns); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestReadResultCSVMalformedRow(t *testing.T) {
	path := writeResultFile(t,
		"accuracy,completeness,value_start,value_end,timeliness\n"+
			"not-a-number,0.9,0,99,0.5\n")

	if _, err := ReadResultCSV(path, DSMSColumns); err == nil {
		t.Error("expected error for unparsable metric")
	}
}
