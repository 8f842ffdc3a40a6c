package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrTypeMismatch indicates a stream or node of a kind not allowed in
	// that position.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrArity indicates an incoming stream count outside a node's bounds.
	ErrArity = errors.New("arity error")

	// ErrInvalidUsage indicates a malformed request such as a bad selector
	// expression.
	ErrInvalidUsage = errors.New("invalid usage")
)

// TypeMismatchError carries the expected kinds and the actual kind found.
type TypeMismatchError struct {
	Expected string
	Actual   string
	Msg      string
}

func (e *TypeMismatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: expected one of %s; got %s", ErrTypeMismatch, e.Msg, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: expected one of %s; got %s", ErrTypeMismatch, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// Bound names which side of an arity range was violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// ArityError carries the violated bound and the actual count.
type ArityError struct {
	Bound  Bound
	Limit  int
	Actual int
}

func (e *ArityError) Error() string {
	if e.Bound == BoundMin {
		return fmt.Sprintf("%s: expected at least %d input stream(s); got %d", ErrArity, e.Limit, e.Actual)
	}
	return fmt.Sprintf("%s: expected at most %d input stream(s); got %d", ErrArity, e.Limit, e.Actual)
}

func (e *ArityError) Unwrap() error { return ErrArity }

// InvalidUsageError describes a malformed request.
type InvalidUsageError struct {
	Msg string
}

func (e *InvalidUsageError) Error() string {
	if e.Msg == "" {
		return ErrInvalidUsage.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidUsage, e.Msg)
}

func (e *InvalidUsageError) Unwrap() error { return ErrInvalidUsage }

func invalidUsage(format string, args ...any) error {
	return &InvalidUsageError{Msg: fmt.Sprintf(format, args...)}
}
