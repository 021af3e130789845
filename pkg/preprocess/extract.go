package preprocess

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/dqbench/dqbench/pkg/dataset"
)

const millisPerDay = 24 * 60 * 60 * 1000

// ExtractDays copies the first days worth of rows (by timestamp, starting at
// the first row's timestamp) from inputPath to outputPath. The input must be
// timestamp-ordered; extraction stops at the first row past the cutoff.
func ExtractDays(ctx context.Context, inputPath, outputPath string, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("preprocess: days must be positive, got %d", days)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("preprocess: failed to read header: %w", err)
	}
	tsIdx := columnIndex(header, "timestamp")
	if tsIdx < 0 {
		return 0, fmt.Errorf("preprocess: timestamp column not found")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, err
	}

	var rows int64
	var cutoff int64
	haveCutoff := false

	for {
		select {
		case <-ctx.Done():
			return rows, ctx.Err()
		default:
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if tsIdx >= len(record) {
			continue
		}

		ts, err := dataset.ParseTimestamp(record[tsIdx])
		if err != nil {
			continue
		}

		if !haveCutoff {
			cutoff = ts + int64(days)*millisPerDay
			haveCutoff = true
		}
		if ts >= cutoff {
			break
		}

		if err := w.Write(record); err != nil {
			return rows, err
		}
		rows++
	}

	w.Flush()
	return rows, w.Error()
}
