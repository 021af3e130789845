// Package dataset reads and writes sensor CSV files in bounded-memory chunks.
//
// The schema is fixed: value_id, sensor_id, timestamp, value, available_time.
// Missing values serialize as empty fields. The reader exposes the global row
// index of every chunk so that windowing stays independent of chunk
// boundaries.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dqbench/dqbench/internal/model"
)

// Column names of the fixed input schema.
const (
	ColValueID       = "value_id"
	ColSensorID      = "sensor_id"
	ColTimestamp     = "timestamp"
	ColValue         = "value"
	ColAvailableTime = "available_time"
)

// timestampLayouts are accepted for raw (not yet normalized) inputs, tried
// after the epoch-milliseconds fast path.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Reader produces a lazy, finite, non-restartable sequence of ordered row
// chunks. Each chunk holds at most chunkSize rows in file order; no row is
// duplicated or dropped across chunk boundaries.
type Reader struct {
	f         *os.File
	csv       *csv.Reader
	chunkSize int

	cols     map[string]int
	hasAvail bool

	nextIndex int64 // global row index of the next parsed row
	line      int64 // physical line for error reporting
	skipped   int64
	closed    bool
}

// Open opens a sensor CSV for chunked reading and parses its header.
// chunkSize must be positive; a non-positive size would read nothing and make
// the input look empty.
func Open(path string, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("dataset: chunk size must be positive, got %d", chunkSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		f:         f,
		chunkSize: chunkSize,
		line:      1,
	}

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	r.csv = cr

	header, err := cr.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, ErrMissingHeader
		}
		return nil, err
	}

	r.cols = make(map[string]int, len(header))
	for i, name := range header {
		r.cols[name] = i
	}
	for _, required := range []string{ColValueID, ColSensorID, ColTimestamp, ColValue} {
		if _, ok := r.cols[required]; !ok {
			f.Close()
			return nil, ErrMissingColumn
		}
	}
	_, r.hasAvail = r.cols[ColAvailableTime]

	return r, nil
}

// HasAvailableTime reports whether the input carries an available_time
// column. Raw extracts do not; prepared datasets do.
func (r *Reader) HasAvailableTime() bool { return r.hasAvail }

// Skipped returns the number of malformed rows skipped so far.
func (r *Reader) Skipped() int64 { return r.skipped }

// Next returns the next chunk, or io.EOF when the stream is exhausted.
// The chunk's Start field is the global row index of its first row.
func (r *Reader) Next() (*model.Chunk, error) {
	if r.closed {
		return nil, ErrClosed
	}

	chunk := &model.Chunk{
		Start:    r.nextIndex,
		Readings: make([]model.SensorReading, 0, r.chunkSize),
	}

	for len(chunk.Readings) < r.chunkSize {
		record, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structurally broken line (bare quote etc): skip and continue.
			r.line++
			r.skipped++
			continue
		}
		r.line++

		reading, rerr := r.parseRecord(record)
		if rerr != nil {
			r.skipped++
			continue
		}
		reading.Index = r.nextIndex
		r.nextIndex++
		chunk.Readings = append(chunk.Readings, reading)
	}

	if chunk.Len() == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (r *Reader) parseRecord(record []string) (model.SensorReading, error) {
	var reading model.SensorReading

	field := func(name string) string {
		idx, ok := r.cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	// Identity fields may arrive null from the source; the completeness
	// predicate checks them, so null is data, not a parse failure.
	if s := field(ColValueID); s == "" {
		reading.SetNull(model.FieldValueID)
	} else {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return reading, &RowError{Line: r.line, Field: ColValueID, Err: err}
		}
		reading.ValueID = id
	}

	if s := field(ColSensorID); s == "" {
		reading.SetNull(model.FieldSensorID)
	} else {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return reading, &RowError{Line: r.line, Field: ColSensorID, Err: err}
		}
		reading.SensorID = id
	}

	ts, err := ParseTimestamp(field(ColTimestamp))
	if err != nil {
		return reading, &RowError{Line: r.line, Field: ColTimestamp, Err: err}
	}
	reading.Timestamp = ts

	if s := field(ColValue); s == "" {
		reading.SetNull(model.FieldValue)
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return reading, &RowError{Line: r.line, Field: ColValue, Err: err}
		}
		reading.Value = v
		// The csv reader reuses its record buffer; copy the field text.
		reading.ValueText = strings.Clone(s)
	}

	if r.hasAvail {
		at, err := ParseTimestamp(field(ColAvailableTime))
		if err != nil {
			return reading, &RowError{Line: r.line, Field: ColAvailableTime, Err: err}
		}
		reading.AvailableTime = at
	} else {
		reading.AvailableTime = reading.Timestamp
	}

	return reading, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	r.closed = true
	return r.f.Close()
}

// ParseTimestamp parses a timestamp field into epoch milliseconds.
// Normalized inputs store plain integers; raw inputs may still carry
// datetime strings.
func ParseTimestamp(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UnixMilli(), nil
		}
		lastErr = err
	}
	return 0, lastErr
}
