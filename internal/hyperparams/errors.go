package hyperparams

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every error caused by a document that is not well-formed.
	ErrParse = errors.New("malformed hyperparameter document")
	// ErrSchema is matched by every error caused by a value nested deeper than one level.
	ErrSchema = errors.New("hyperparameter document violates schema")
)

// ParseError reports a document that could not be decoded. No partial result accompanies it.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", ErrParse, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// SchemaError reports a single value that breaks the two-tier layout.
// Scenario is empty when the offending key sits at the top level.
type SchemaError struct {
	Scenario string
	Key      string
	Line     int
	Reason   string
}

func (e *SchemaError) Error() string {
	key := e.Key
	if e.Scenario != "" {
		key = e.Scenario + "." + e.Key
	}
	if key == "" {
		return fmt.Sprintf("%s: line %d: %s", ErrSchema, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: line %d: %q: %s", ErrSchema, e.Line, key, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
