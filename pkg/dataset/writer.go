package dataset

import (
	"bufio"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/dqbench/dqbench/internal/model"
)

// Writer streams chunks of readings to a sensor CSV file.
// Output is partial until Close returns; callers that need a durable
// completion signal record one through the checkpoint store.
type Writer struct {
	f    *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows int64
}

// Create creates the output file and writes the header row.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	buf := bufio.NewWriterSize(f, 256*1024)
	w := &Writer{
		f:   f,
		buf: buf,
		csv: csv.NewWriter(buf),
	}

	header := []string{ColValueID, ColSensorID, ColTimestamp, ColValue, ColAvailableTime}
	if err := w.csv.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// WriteChunk appends all readings of a chunk.
func (w *Writer) WriteChunk(chunk *model.Chunk) error {
	record := make([]string, 5)
	for i := range chunk.Readings {
		r := &chunk.Readings[i]

		record[0] = formatID(r.ValueID, r.IsNull(model.FieldValueID))
		record[1] = formatID(r.SensorID, r.IsNull(model.FieldSensorID))
		record[2] = strconv.FormatInt(r.Timestamp, 10)
		switch {
		case r.IsNull(model.FieldValue):
			record[3] = ""
		case r.ValueText != "":
			// Untouched rows keep their source text, so non-canonical
			// float formatting ("1.50") round-trips byte for byte.
			record[3] = r.ValueText
		default:
			record[3] = FormatValue(r.Value)
		}
		record[4] = strconv.FormatInt(r.AvailableTime, 10)

		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	w.rows += int64(chunk.Len())
	return nil
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int64 { return w.rows }

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// FormatValue renders a sensor value with the shortest representation that
// round-trips, so a read-write cycle with no injected defects is
// byte-identical.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatID(id int64, null bool) string {
	if null {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
