package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Only ErrSchemaMismatch and a total output-write
// failure abort a run; everything else is recorded and recovered.
var (
	// ErrSchemaMismatch is returned when no known archive layout variant
	// matches. Fatal.
	ErrSchemaMismatch = errors.New("archive layout unrecognized")

	// ErrMalformedRecord is returned when an individual record lacks a
	// required field. The record is skipped.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingMedia is returned when a referenced media file is absent
	// from the archive.
	ErrMissingMedia = errors.New("media file not in archive")

	// ErrRemoteLookupFailed is returned when a remote batch cannot be
	// completed. Affected ids stay unresolved for this run.
	ErrRemoteLookupFailed = errors.New("remote lookup failed")

	// ErrRateLimited is returned when a remote endpoint throttles us.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpgradeUnavailable is returned when no better remote version of
	// a media item exists.
	ErrUpgradeUnavailable = errors.New("no better media version available")

	// ErrCacheWrite is returned when persisted state cannot be written.
	// Fatal for persistence only; the in-memory result stands.
	ErrCacheWrite = errors.New("cache write failed")
)

// SchemaError is an ErrSchemaMismatch carrying the key or file whose
// absence made the layout unrecognizable.
type SchemaError struct {
	Missing string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("archive layout unrecognized: missing %s", e.Missing)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// RecordError wraps a per-record failure with enough context to surface
// in the run summary.
type RecordError struct {
	Op     string
	Record string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Record != "" {
		return e.Op + " [" + e.Record + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError.
func NewRecordError(op, record string, err error) *RecordError {
	return &RecordError{Op: op, Record: record, Err: err}
}
