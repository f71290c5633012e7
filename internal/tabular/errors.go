package tabular

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent is returned when a resource has no lines at all.
	ErrEmptyContent = errors.New("content has no lines")

	// ErrHeaderOnlyContent is returned when a resource declared with a
	// header has nothing but that header.
	ErrHeaderOnlyContent = errors.New("content has only a header line")

	// ErrFieldCountMismatch is the kind of every *FieldCountError.
	ErrFieldCountMismatch = errors.New("wrong number of fields")

	// ErrNumericParse is the kind of every *NumericParseError.
	ErrNumericParse = errors.New("number expected")
)

// FieldCountError reports a data line with the wrong number of fields.
type FieldCountError struct {
	Line     int // 1-based line number in the resource
	Expected int
	Actual   int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("line %d: %s: found %d, expected %d", e.Line, ErrFieldCountMismatch, e.Actual, e.Expected)
}

func (e *FieldCountError) Unwrap() error {
	return ErrFieldCountMismatch
}

// NumericParseError reports a field that is not a floating-point literal.
type NumericParseError struct {
	Line   int // 1-based line number in the resource
	Column int // 1-based field index
	Value  string
	Err    error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s, got %q", e.Line, e.Column, ErrNumericParse, e.Value)
}

// Unwrap exposes both the kind and the strconv cause.
func (e *NumericParseError) Unwrap() []error {
	return []error{ErrNumericParse, e.Err}
}
