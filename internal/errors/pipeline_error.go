// Package errors provides standardized error types for pipeline operations.
// PipelineError carries the failing operation, the column involved (if any)
// and an optional cause, so fatal input problems surface with a clear message.
package errors

import (
	"fmt"
	"strings"
)

// PipelineError represents standardized errors across all pipeline stages
type PipelineError struct {
	Op      string // Operation name (e.g., "NormalizeText", "Load", "Clean")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Hint    string // Optional remediation hint
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	var b strings.Builder
	if e.Column != "" {
		fmt.Fprintf(&b, "%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	} else {
		fmt.Fprintf(&b, "%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (Hint: %s)", e.Hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause for error wrapping support
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *PipelineError) Is(target error) bool {
	if pe, ok := target.(*PipelineError); ok {
		return e.Op == pe.Op && e.Column == pe.Column && e.Message == pe.Message
	}
	return false
}

// WithHint returns a copy of the error carrying a remediation hint.
func (e *PipelineError) WithHint(hint string) *PipelineError {
	cp := *e
	cp.Hint = hint
	return &cp
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Column:  column,
		Message: "column not found",
	}
}

// NewColumnNotFoundErrorWithAvailable lists the columns the table does have.
func NewColumnNotFoundErrorWithAvailable(op, column string, available []string) *PipelineError {
	err := NewColumnNotFoundError(op, column)
	if len(available) == 0 {
		return err
	}
	return err.WithHint("available columns: " + strings.Join(available, ", "))
}

// NewInputNotFoundError creates an error for a missing input file
func NewInputNotFoundError(op, path string, cause error) *PipelineError {
	return &PipelineError{
		Op:      op,
		Message: fmt.Sprintf("input file %q not found", path),
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Message: message,
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *PipelineError {
	return &PipelineError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Predefined error variables for common cases
var (
	// ErrEmptyTable indicates operations that need at least one row
	ErrEmptyTable = &PipelineError{
		Op:      "validation",
		Message: "operation not supported on empty table",
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &PipelineError{
		Op:      "validation",
		Message: "columns must have the same length",
	}

	// ErrTargetNotFound indicates the modeling target column is absent
	ErrTargetNotFound = &PipelineError{
		Op:      "Clean",
		Column:  "Attrition",
		Message: "column not found",
	}
)
