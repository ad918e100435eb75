package model

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned by the adapter registry when no adapter
// claims a file. The engine skips the file with a warning; it is not a parse
// failure.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ParseError is a file-level parse failure. It is recovered: the file is
// excluded from the run and counted in metrics.
type ParseError struct {
	FilePath string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure in %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PolicyConfigError is fatal: invalid threshold values abort the run before
// any analysis starts.
type PolicyConfigError struct {
	Field  string
	Reason string
}

func (e *PolicyConfigError) Error() string {
	return fmt.Sprintf("invalid policy: %s %s", e.Field, e.Reason)
}

// InvariantError indicates an engine bug, e.g. a cluster referencing a file
// outside the current run. It halts the run rather than emit corrupted output.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", e.Detail)
}
