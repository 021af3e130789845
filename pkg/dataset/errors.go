package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingHeader is returned when the input file has no header row.
	ErrMissingHeader = errors.New("dataset: missing header row")

	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("dataset: required column missing")

	// ErrClosed is returned when reading from a closed reader.
	ErrClosed = errors.New("dataset: reader closed")
)

// RowError describes a row that could not be parsed against the schema.
// Malformed rows are skipped and counted, never fatal to the run.
type RowError struct {
	Line  int64
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("dataset: malformed row at line %d (field %s): %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
