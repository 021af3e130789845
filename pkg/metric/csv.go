package metric

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/dqbench/dqbench/internal/model"
)

// Metrics CSV column order, shared with the verifier's local side.
var csvHeader = []string{"value_start", "value_end", "accuracy", "completeness", "timeliness"}

// WriteCSV writes window metrics to path with full float precision. The
// verifier parses both sides numerically, so formatting does not have to
// match the DSMS's two-decimal formatter.
func WriteCSV(path string, windows []model.WindowMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	record := make([]string, 5)
	for _, wm := range windows {
		record[0] = strconv.FormatInt(wm.Key.FirstValueID, 10)
		record[1] = strconv.FormatInt(wm.Key.LastValueID, 10)
		record[2] = strconv.FormatFloat(wm.Accuracy, 'f', -1, 64)
		record[3] = strconv.FormatFloat(wm.Completeness, 'f', -1, 64)
		record[4] = strconv.FormatFloat(wm.Timeliness, 'f', -1, 64)
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
