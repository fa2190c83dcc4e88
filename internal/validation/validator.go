// Package validation provides argument validation for verbs: column
// existence, name uniqueness, required arguments and numeric ranges.
// Validators are composable and report DataFrameError values.
package validation

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist, suggesting the closest existing name
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundErrorWithSuggestions(v.op, column, v.df.Columns())
		}
	}
	return nil
}

// UniqueValidator rejects repeated names in an argument list
type UniqueValidator struct {
	names []string
	op    string
	what  string
}

// NewUniqueValidator creates a validator for name uniqueness; what describes
// the names in the error message, e.g. "column" or "grouping key"
func NewUniqueValidator(op, what string, names ...string) *UniqueValidator {
	return &UniqueValidator{
		names: names,
		op:    op,
		what:  what,
	}
}

// Validate checks that no name appears twice
func (v *UniqueValidator) Validate() error {
	seen := make(map[string]bool, len(v.names))
	for _, name := range v.names {
		if seen[name] {
			return errors.NewValidationError(v.op, name, fmt.Sprintf("%s given more than once", v.what))
		}
		seen[name] = true
	}
	return nil
}

// RequiredValidator rejects empty argument lists
type RequiredValidator struct {
	count int
	op    string
	what  string
}

// NewRequiredValidator creates a validator requiring at least one argument
func NewRequiredValidator(count int, op, what string) *RequiredValidator {
	return &RequiredValidator{
		count: count,
		op:    op,
		what:  what,
	}
}

// Validate checks that at least one argument was given
func (v *RequiredValidator) Validate() error {
	if v.count == 0 {
		return errors.NewInvalidInputError(v.op, fmt.Sprintf("at least one %s is required", v.what))
	}
	return nil
}

// RangeValidator validates that a value lies in [lower, upper]
type RangeValidator struct {
	value int
	lower int
	upper int
	op    string
	what  string
}

// NewRangeValidator creates a validator for inclusive bounds
func NewRangeValidator(value, lower, upper int, op, what string) *RangeValidator {
	return &RangeValidator{
		value: value,
		lower: lower,
		upper: upper,
		op:    op,
		what:  what,
	}
}

// Validate checks if value is within bounds
func (v *RangeValidator) Validate() error {
	if v.value < v.lower || v.value > v.upper {
		message := fmt.Sprintf("%s %d out of range [%d, %d]", v.what, v.value, v.lower, v.upper)
		return errors.NewInvalidInputError(v.op, message)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateUnique is a convenience function for uniqueness validation
func ValidateUnique(op, what string, names ...string) error {
	return NewUniqueValidator(op, what, names...).Validate()
}

// ValidateRequired is a convenience function for non-empty argument lists
func ValidateRequired(count int, op, what string) error {
	return NewRequiredValidator(count, op, what).Validate()
}

// ValidateSampleSize checks that n rows can be drawn without replacement from df
func ValidateSampleSize(df ColumnProvider, n int, op string) error {
	return NewRangeValidator(n, 0, df.Len(), op, "sample size").Validate()
}
