package verify

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dqbench/dqbench/internal/model"
)

// ColumnMap gives the column positions of the DSMS result file.
type ColumnMap struct {
	Accuracy     int
	Completeness int
	ValueStart   int
	ValueEnd     int
	Timeliness   int
}

// DSMSColumns is the column order the DSMS's quality query emits.
var DSMSColumns = ColumnMap{
	Accuracy:     0,
	Completeness: 1,
	ValueStart:   2,
	ValueEnd:     3,
	Timeliness:   4,
}

// LocalColumns is the order pkg/metric writes.
var LocalColumns = ColumnMap{
	ValueStart:   0,
	ValueEnd:     1,
	Accuracy:     2,
	Completeness: 3,
	Timeliness:   4,
}

// ReadResultCSV loads a window metrics file. Both sides of a comparison are
// parsed into the same numeric type, so formatting differences (decimal
// places, trailing zeros) cannot affect the comparison. The first row is a
// header and is skipped.
func ReadResultCSV(path string, cols ColumnMap) ([]model.WindowMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("verify: empty result file %q", path)
		}
		return nil, err
	}

	var out []model.WindowMetrics
	var ordinal int64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("verify: malformed result row in %q: %w", path, err)
		}

		wm := model.WindowMetrics{Key: model.WindowKey{Ordinal: ordinal}}
		if wm.Key.FirstValueID, err = parseID(record, cols.ValueStart); err != nil {
			return nil, fmt.Errorf("verify: row %d value_start: %w", ordinal+1, err)
		}
		if wm.Key.LastValueID, err = parseID(record, cols.ValueEnd); err != nil {
			return nil, fmt.Errorf("verify: row %d value_end: %w", ordinal+1, err)
		}
		if wm.Accuracy, err = parseMetric(record, cols.Accuracy); err != nil {
			return nil, fmt.Errorf("verify: row %d accuracy: %w", ordinal+1, err)
		}
		if wm.Completeness, err = parseMetric(record, cols.Completeness); err != nil {
			return nil, fmt.Errorf("verify: row %d completeness: %w", ordinal+1, err)
		}
		if wm.Timeliness, err = parseMetric(record, cols.Timeliness); err != nil {
			return nil, fmt.Errorf("verify: row %d timeliness: %w", ordinal+1, err)
		}

		out = append(out, wm)
		ordinal++
	}
	return out, nil
}

func parseMetric(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("column %d out of range", idx)
	}
	return strconv.ParseFloat(record[idx], 64)
}

// parseID accepts integer ids, including ones the DSMS formatted as floats.
func parseID(record []string, idx int) (int64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("column %d out of range", idx)
	}
	s := record[idx]
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
