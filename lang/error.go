package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnknownVariable  = NewError("unknown variable")
	ErrTypeMismatch     = NewError("type mismatch")
	ErrFunctionArgument = NewError("function argument")
	ErrArithmetic       = NewError("arithmetic")
	ErrExternalLookup   = NewError("external lookup")
	ErrNilEnvironment   = NewError("nil environment")

	ErrNotFound          = NewError("not found")
	ErrNoCollaborator    = NewError("no collaborator configured")
	ErrInvalidValue      = NewError("invalid value")
	ErrMaxDepthExceeded  = NewError("maximum reference depth exceeded")
	ErrReferenceCycle    = NewError("reference cycle")
	ErrReadInput         = NewError("failed to read input")
	ErrInvalidPattern    = NewError("invalid timestamp pattern")
	ErrInvalidTimestamp  = NewError("invalid timestamp")
	ErrUnknownFunction   = NewError("unknown function")
	ErrDivisionByZero    = NewError("division by zero")
	ErrInvalidPrecision  = NewError("invalid precision")
	ErrInvalidExpression = NewError("invalid expression")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t.root())
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		base:  e.root(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		base:  e.root(),
	}
}

// Position is a location in formula text. Line is 1-based and Column is a
// 0-based rune offset within the line.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

func (p Position) attr() slog.Attr {
	return slog.Group("position", slog.Int("line", p.Line), slog.Int("column", p.Column))
}

// SyntaxKind classifies a [SyntaxError].
type SyntaxKind int

const (
	// Mismatched means the current token cannot continue the input.
	Mismatched SyntaxKind = iota
	// Extraneous means deleting the current token would let parsing go on.
	Extraneous
	// Unrecognized means the lexer could not form a token.
	Unrecognized
)

// SyntaxError reports the first invalid token of a formula. Parsing stops
// at the first error; there is no recovery.
type SyntaxError struct {
	Position

	Kind     SyntaxKind
	Token    string   // offending text, "<EOF>" at end of input
	Expected []Symbol // legal continuations, in declaration order
}

// Error renders the diagnostic, for example:
//
//	Line 1:4 mismatched input '<EOF>' expecting {AS_TIMESTAMP, ..., ' '}
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	sb.WriteString("Line ")
	sb.WriteString(strconv.Itoa(e.Line))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(e.Column))
	sb.WriteByte(' ')

	switch e.Kind {
	case Unrecognized:
		sb.WriteString("token recognition error at: '")
		sb.WriteString(e.Token)
		sb.WriteByte('\'')

		return sb.String()

	case Extraneous:
		sb.WriteString("extraneous input '")

	default:
		sb.WriteString("mismatched input '")
	}

	sb.WriteString(e.Token)
	sb.WriteString("' expecting ")
	sb.WriteString(e.ExpectedString())

	return sb.String()
}

// ExpectedString renders the expected set, braced unless it has exactly one
// member.
func (e *SyntaxError) ExpectedString() string {
	if len(e.Expected) == 1 {
		return e.Expected[0].String()
	}

	names := make([]string, len(e.Expected))
	for i, sym := range e.Expected {
		names[i] = sym.String()
	}

	return "{" + strings.Join(names, ", ") + "}"
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "syntax error"),
		slog.String("token", e.Token),
		e.Position.attr(),
		slog.String("expected", e.ExpectedString()),
	)
}

// ErrorKind classifies an [EvaluationError].
type ErrorKind int

const (
	UnknownVariable ErrorKind = iota + 1
	TypeMismatch
	FunctionArgument
	Arithmetic
	ExternalLookup
	InvalidEnvironment
)

func (k ErrorKind) sentinel() *Error {
	switch k {
	case UnknownVariable:
		return ErrUnknownVariable
	case TypeMismatch:
		return ErrTypeMismatch
	case FunctionArgument:
		return ErrFunctionArgument
	case Arithmetic:
		return ErrArithmetic
	case ExternalLookup:
		return ErrExternalLookup
	case InvalidEnvironment:
		return ErrNilEnvironment
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.msg
	}

	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// EvaluationError reports a semantic failure while walking a syntax tree.
// errors.Is matches it against the sentinel of its Kind (for example
// [ErrTypeMismatch]); errors.Unwrap reaches the underlying cause, if any.
type EvaluationError struct {
	Position

	Kind   ErrorKind
	Detail string
	Err    error

	attrs []slog.Attr
}

func newEvalError(kind ErrorKind, pos Position, format string, args ...any) *EvaluationError {
	return &EvaluationError{
		Position: pos,
		Kind:     kind,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// wrap sets the underlying cause.
func (e *EvaluationError) wrap(err error) *EvaluationError {
	e.Err = err

	return e
}

// with appends structured logging attributes.
func (e *EvaluationError) with(attrs ...slog.Attr) *EvaluationError {
	e.attrs = append(e.attrs, attrs...)

	return e
}

// Error renders the diagnostic, for example:
//
//	unknown variable: "a" (line 1, column 0)
func (e *EvaluationError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Kind.String())

	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	sb.WriteString(" (")
	sb.WriteString(e.Position.String())
	sb.WriteByte(')')

	return sb.String()
}

// Is matches the sentinel of e's Kind.
func (e *EvaluationError) Is(target error) bool {
	s := e.Kind.sentinel()

	return s != nil && errors.Is(s, target)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *EvaluationError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)
	attrs = append(attrs,
		slog.String("error", e.Kind.String()),
		slog.String("detail", e.Detail),
		e.Position.attr(),
	)

	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
