// Package errors provides standardized error types for table and expression
// operations. DataFrameError covers engine failures (missing columns, bad join
// labels, invalid sizes); ExpressionError covers the expression taxonomy used by
// the filter and the column definition resolver.
package errors

import (
	"fmt"
	"strings"
)

// DataFrameError represents standardized errors across all DataFrame operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "Select", "MergeWith", "Arrange")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Hint    string // Optional remediation hint
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	var msg string
	if e.Column != "" {
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	} else {
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Hint != "" {
		msg += ". Hint: " + e.Hint
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// Predefined errors with an empty Op match any operation.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" {
		return e.Message == df.Message
	}
	return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// WithHint returns a copy of the error carrying a remediation hint
func (e *DataFrameError) WithHint(hint string) *DataFrameError {
	c := *e
	c.Hint = hint
	return &c
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: msgColumnNotFound,
	}
}

// NewColumnNotFoundErrorWithSuggestions creates a column-not-found error whose
// hint names the closest available column.
func NewColumnNotFoundErrorWithSuggestions(op, column string, available []string) *DataFrameError {
	err := NewColumnNotFoundError(op, column)
	hint := fmt.Sprintf("Available columns: [%s]", strings.Join(available, ", "))
	if suggestion, ok := ClosestMatch(column, available); ok {
		hint = fmt.Sprintf("Did you mean '%s'? %s", suggestion, hint)
	}
	return err.WithHint(hint)
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewUnknownJoinTypeError reports a join label outside the supported set
func NewUnknownJoinTypeError(op, label string, supported []string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("%s: %q", msgUnknownJoinType, label),
		Hint:    fmt.Sprintf("use one of [%s]", strings.Join(supported, ", ")),
		Cause:   ErrUnknownJoinType,
	}
}

// NewIndexOutOfBoundsError creates an error for out-of-range row positions
func NewIndexOutOfBoundsError(op string, index, length int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("index %d is out of bounds (valid range: [0, %d))", index, length),
		Cause:   ErrInvalidIndex,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

const (
	msgColumnNotFound  = "column does not exist"
	msgUnknownJoinType = "unknown join type"
)

// Predefined error variables for common cases
var (
	// ErrColumnNotFound matches any column-not-found DataFrameError
	ErrColumnNotFound = &DataFrameError{Message: msgColumnNotFound}

	// ErrUnknownJoinType indicates a merge label outside the supported set
	ErrUnknownJoinType = &DataFrameError{
		Op:      "validation",
		Message: msgUnknownJoinType,
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &DataFrameError{
		Op:      "validation",
		Message: "arrays must have the same length",
	}

	// ErrInvalidIndex indicates out-of-bounds index access
	ErrInvalidIndex = &DataFrameError{
		Op:      "indexing",
		Message: "index out of bounds",
	}
)
