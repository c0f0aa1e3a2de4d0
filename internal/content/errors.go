package content

import (
	"errors"
	"fmt"
)

// ValidationError describes an invalid pipeline request. It is returned
// before any backend call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrEmptyBatch means every item in a question batch failed to parse.
var ErrEmptyBatch = errors.New("no questions could be parsed from the response")

// ParseError means the backend replied but the reply could not be turned
// into the expected structure.
type ParseError struct {
	Stage string // "extract", "schema", "decode"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
