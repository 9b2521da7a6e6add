package query

import (
	"errors"
	"fmt"
)

// OperatorKind names one of the operator tables.
type OperatorKind string

const (
	KindFilter     OperatorKind = "filter"
	KindExpression OperatorKind = "expression"
	KindStage      OperatorKind = "stage"
)

var (
	// ErrUnknownOperator is matched by UnknownOperatorError.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrMalformedSpec is matched by MalformedSpecError.
	ErrMalformedSpec = errors.New("malformed query spec")
	// ErrUnsupportedForDialect is matched by UnsupportedDialectError.
	ErrUnsupportedForDialect = errors.New("operator not supported for dialect")
)

// UnknownOperatorError is returned when a tag is missing from the table it is
// looked up in.
type UnknownOperatorError struct {
	Kind OperatorKind
	Tag  string
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown %s operator %q", e.Kind, e.Tag)
}

func (e UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}

// MalformedSpecError is returned when an operator or stage receives arguments
// of the wrong shape or arity.
type MalformedSpecError struct {
	Operator string
	Reason   string
}

func (e MalformedSpecError) Error() string {
	if e.Operator == "" {
		return "malformed spec: " + e.Reason
	}
	return fmt.Sprintf("malformed %s: %s", e.Operator, e.Reason)
}

func (e MalformedSpecError) Is(target error) bool {
	return target == ErrMalformedSpec
}

// UnsupportedDialectError is returned by operators that only exist in one
// dialect.
type UnsupportedDialectError struct {
	Operator string
	Dialect  Dialect
}

func (e UnsupportedDialectError) Error() string {
	return fmt.Sprintf("operator %s is not supported for dialect %s", e.Operator, e.Dialect)
}

func (e UnsupportedDialectError) Is(target error) bool {
	return target == ErrUnsupportedForDialect
}

func malformed(op, format string, args ...any) error {
	return MalformedSpecError{Operator: op, Reason: fmt.Sprintf(format, args...)}
}
