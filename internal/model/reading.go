// Package model defines core data structures for dqbench.
package model

// Field identifies a nullable column of a sensor reading.
// Completeness counts a row as missing when any required field is null.
type Field uint8

const (
	FieldValueID Field = 1 << iota
	FieldSensorID
	FieldValue
)

// RequiredFields are the fields the completeness predicate checks.
const RequiredFields = FieldValueID | FieldSensorID | FieldValue

// SensorReading is one row of a sensor time series.
// Timestamps are milliseconds since Unix epoch, matching the DSMS input
// format. ValueID, SensorID and Timestamp are identity fields: the injector
// never mutates them, only Value and AvailableTime.
type SensorReading struct {
	// Index is the global row index in the stream, assigned by the reader.
	// Window boundaries are defined over this index, not chunk positions.
	Index int64

	ValueID   int64
	SensorID  int64
	Timestamp int64

	// Value is meaningful only when FieldValue is not set in Nulls.
	Value float64

	// ValueText is the raw field text Value was parsed from. The writer
	// emits it verbatim when no defect touched the row, so non-canonical
	// float text ("1.50") survives a pass-through run byte for byte. Empty
	// when the value is null, synthesized, or mutated by the injector.
	ValueText string

	// AvailableTime is when the reading became visible to the system.
	// Invariant AvailableTime >= Timestamp, except where a delay defect
	// widened the gap deliberately.
	AvailableTime int64

	// Nulls marks which nullable fields are null on this row.
	Nulls Field
}

// IsNull reports whether f is null on this row.
func (r *SensorReading) IsNull(f Field) bool { return r.Nulls&f != 0 }

// SetNull marks f as null.
func (r *SensorReading) SetNull(f Field) { r.Nulls |= f }

// Incomplete reports whether any required field is null.
func (r *SensorReading) Incomplete() bool { return r.Nulls&RequiredFields != 0 }

// Currency is the delay between the reading's event time and its
// availability, in milliseconds.
func (r *SensorReading) Currency() int64 { return r.AvailableTime - r.Timestamp }

// Chunk is a contiguous run of readings from the stream.
// Chunking bounds memory only; it is transparent to windowing.
type Chunk struct {
	// Start is the global row index of the first reading.
	Start int64

	Readings []SensorReading
}

// Len returns the number of readings in the chunk.
func (c *Chunk) Len() int { return len(c.Readings) }
