// Package docxgen provides custom error types for better error handling and reporting.
package docxgen

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a failure to decode a delta. It is recoverable:
// the builder that reports it leaves its document untouched.
type ParseError struct {
	Message string
	// Op is the index of the offending operation, or -1 when the failure
	// is not tied to a single op
	Op int
	// Offset is the byte offset in the input where decoding failed, if known
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("delta parse error")
	if e.Op >= 0 {
		fmt.Fprintf(&sb, " in op %d", e.Op)
	}
	if e.Offset > 0 {
		fmt.Fprintf(&sb, " at offset %d", e.Offset)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new parse error
func NewParseError(message string, op int, offset int64, cause error) error {
	return &ParseError{
		Message: message,
		Op:      op,
		Offset:  offset,
		Err:     cause,
	}
}

// IOError represents a failed read or write of an image source, an output
// package or another file. It is fatal for the call that triggered it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" && e.Err != nil {
		return fmt.Sprintf("i/o error during %s of '%s': %v", e.Op, e.Path, e.Err)
	} else if e.Path != "" {
		return fmt.Sprintf("i/o error during %s of '%s'", e.Op, e.Path)
	} else if e.Err != nil {
		return fmt.Sprintf("i/o error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("i/o error during %s", e.Op)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new I/O error
func NewIOError(op, path string, cause error) error {
	return &IOError{
		Op:   op,
		Path: path,
		Err:  cause,
	}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors
func (m *MultiError) Errors() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// IsParseError checks if err is or wraps a parse error
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsIOError checks if err is or wraps an I/O error
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
