// Package validation provides reusable input checks for pipeline stages:
// column existence, length consistency, non-empty tables, numeric ranges
// and option values.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paveg/scrub/internal/errors"
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
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	t       ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(t ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		t:       t,
		columns: columns,
		op:      op,
	}
}

// Validate checks that every column exists; the error lists what is available.
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.t.HasColumn(column) {
			return errors.NewColumnNotFoundErrorWithAvailable(v.op, column, v.t.Columns())
		}
	}
	return nil
}

// LengthValidator validates length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// EmptyTableValidator rejects tables without rows
type EmptyTableValidator struct {
	t  ColumnProvider
	op string
}

// NewEmptyTableValidator creates a validator for empty table checks
func NewEmptyTableValidator(t ColumnProvider, op string) *EmptyTableValidator {
	return &EmptyTableValidator{t: t, op: op}
}

// Validate checks that the table has at least one row
func (v *EmptyTableValidator) Validate() error {
	if v.t.Len() == 0 {
		return &errors.PipelineError{
			Op:      v.op,
			Message: "operation not supported on empty table",
			Cause:   errors.ErrEmptyTable,
		}
	}
	return nil
}

// RangeValidator checks that a numeric option lies in [min, max] or, when
// exclusive is set, in (min, max).
type RangeValidator struct {
	name      string
	value     float64
	min, max  float64
	exclusive bool
	op        string
}

// NewRangeValidator creates a validator for an inclusive range
func NewRangeValidator(op, name string, value, minValue, maxValue float64) *RangeValidator {
	return &RangeValidator{op: op, name: name, value: value, min: minValue, max: maxValue}
}

// NewOpenRangeValidator creates a validator for an exclusive range
func NewOpenRangeValidator(op, name string, value, minValue, maxValue float64) *RangeValidator {
	return &RangeValidator{op: op, name: name, value: value, min: minValue, max: maxValue, exclusive: true}
}

// Validate checks the bounds
func (v *RangeValidator) Validate() error {
	inside := v.value >= v.min && v.value <= v.max
	lo, hi := "[", "]"
	if v.exclusive {
		inside = v.value > v.min && v.value < v.max
		lo, hi = "(", ")"
	}
	if !inside {
		return errors.NewValidationError(v.op, v.name,
			fmt.Sprintf("value %v outside %s%v, %v%s", v.value, lo, v.min, v.max, hi))
	}
	return nil
}

// OneOfValidator checks that a string option is one of an allowed set
type OneOfValidator struct {
	name    string
	value   string
	allowed []string
	op      string
}

// NewOneOfValidator creates a validator for enumerated options
func NewOneOfValidator(op, name, value string, allowed ...string) *OneOfValidator {
	return &OneOfValidator{op: op, name: name, value: value, allowed: allowed}
}

// Validate checks membership
func (v *OneOfValidator) Validate() error {
	if !slices.Contains(v.allowed, v.value) {
		return errors.NewValidationError(v.op, v.name,
			fmt.Sprintf("invalid value %q (must be one of: %s)", v.value, strings.Join(v.allowed, ", ")))
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

// ValidateColumns is a convenience function for column validation
func ValidateColumns(t ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(t, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateNotEmpty is a convenience function for empty table validation
func ValidateNotEmpty(t ColumnProvider, op string) error {
	return NewEmptyTableValidator(t, op).Validate()
}
