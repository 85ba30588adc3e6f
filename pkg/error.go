package pkg

import (
	"fmt"
	"slices"
	"strings"
)

// Error is a chain of errors ordered from innermost to outermost.
//
// The command line reports failures that cross several layers (reading a
// file, decoding it, evaluating a formula); an Error keeps every layer
// reachable through errors.Is and errors.As.
type Error []error

// Sentinel errors for the command line. Each is meant to be extended with
// [Error.Wrap] or [Error.Wrapf].
var (
	// ErrReadInput is returned when an input file or stdin cannot be read.
	ErrReadInput = MakeErrorf("failed to read input")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = MakeErrorf("invalid format")

	// ErrInvalidVariable is returned when a --var flag cannot be bound.
	ErrInvalidVariable = MakeErrorf("invalid variable")

	// ErrInvalidTimezone is returned when the --timezone flag names no
	// known location.
	ErrInvalidTimezone = MakeErrorf("invalid timezone")

	// ErrNoStore is returned by commands that require a factor database
	// when --db was not given.
	ErrNoStore = MakeErrorf("no factor database (use --db)")
)

// MakeError constructs an Error from the given errors, innermost first.
// Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain with ": ", outermost last.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a copy of the receiver with err appended.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf returns a copy of the receiver with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(slices.Clip(e), fmt.Errorf(format, args...))
}

// Is reports whether target is an Error that e extends, so a sentinel
// matches every chain built from it with Wrap or Wrapf.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i, err := range t {
		if e[i] != err {
			return false
		}
	}

	return true
}

// Unwrap returns the errors in the chain.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors flattens an error tree into a chain, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
