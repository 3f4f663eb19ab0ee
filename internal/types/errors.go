package types

import (
	"errors"
	"fmt"
	"strings"
)

// Classifier lifecycle errors.
var (
	// ErrClassifierNotReady is returned when an analysis is requested
	// before the classifier finished its one-time initialization.
	ErrClassifierNotReady = errors.New("roast classifier is not ready")

	// ErrAnalysisInFlight is returned when an analysis is requested while
	// another one is still running. Requests are rejected, not queued.
	ErrAnalysisInFlight = errors.New("another analysis is already in flight")
)

// InputError reports malformed caller input: an undecodable image, a
// zero-area frame, an out-of-range rating or an unknown flavor tag.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// NewInputError builds an InputError with an optional underlying cause.
func NewInputError(reason string, err error) *InputError {
	return &InputError{Reason: reason, Err: err}
}

// ValidationError blocks a tasting-record save. Fields carries every
// missing required field name, not just the first one found.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// PersistenceError wraps a failed read or write against the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ExportError wraps a failure in the export pipeline. Stage names the step
// that failed: render, convert or store. An export failure never rolls back
// the already-saved record.
type ExportError struct {
	Stage string
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed at %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
