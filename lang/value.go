package lang

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of a [Value].
type Kind int

const (
	KindNumber Kind = iota + 1
	KindString
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the result of evaluating an expression. It is one of [Number],
// [String], or [Boolean]. Null is represented by a nil Value.
type Value interface {
	Kind() Kind
	String() string

	value()
}

// Number is an arbitrary-precision decimal value.
type Number struct{ d decimal.Decimal }

// String is a UTF-8 text value.
type String string

// Boolean is a truth value.
type Boolean bool

func (Number) value()  {}
func (String) value()  {}
func (Boolean) value() {}

func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Boolean) Kind() Kind { return KindBoolean }

// NewNumber returns d as a Number.
func NewNumber(d decimal.Decimal) Number { return Number{d: d} }

// NumberFromInt returns i as a Number.
func NumberFromInt(i int64) Number { return Number{d: decimal.NewFromInt(i)} }

// NumberFromString parses decimal or scientific notation text.
func NumberFromString(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, ErrInvalidValue.Wrap(err).With(slog.String("text", s))
	}

	return Number{d: d}, nil
}

// NewString returns s as a String.
func NewString(s string) String { return String(s) }

// NewBoolean returns b as a Boolean.
func NewBoolean(b bool) Boolean { return Boolean(b) }

// Decimal returns the numeric payload.
func (n Number) Decimal() decimal.Decimal { return n.d }

// String renders n in plain decimal notation without trailing zeros.
func (n Number) String() string { return n.d.String() }

// MarshalJSON encodes n as a JSON number with its exact decimal text.
func (n Number) MarshalJSON() ([]byte, error) { return []byte(n.d.String()), nil }

// MarshalYAML encodes n as a YAML number with its exact decimal text.
func (n Number) MarshalYAML() ([]byte, error) { return []byte(n.d.String()), nil }

// Text returns the string payload.
func (s String) Text() string { return string(s) }

func (s String) String() string { return string(s) }

// Bool returns the boolean payload.
func (b Boolean) Bool() bool { return bool(b) }

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// ValueOf converts a native Go value, as produced by JSON or YAML decoders,
// into a Value. A nil input yields a nil Value.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Value:
		return t, nil
	case decimal.Decimal:
		return Number{d: t}, nil
	case bool:
		return Boolean(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return NumberFromString(t.String())
	case int:
		return NumberFromInt(int64(t)), nil
	case int32:
		return NumberFromInt(int64(t)), nil
	case int64:
		return NumberFromInt(t), nil
	case uint:
		return Number{d: decimal.NewFromUint64(uint64(t))}, nil
	case uint32:
		return NumberFromInt(int64(t)), nil
	case uint64:
		return Number{d: decimal.NewFromUint64(t)}, nil
	case float32:
		return ValueOf(float64(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, ErrInvalidValue.With(slog.Float64("value", t))
		}

		return Number{d: decimal.NewFromFloat(t)}, nil
	default:
		return nil, ErrInvalidValue.With(slog.String("type", typeName(v)))
	}
}

// Native returns the JSON-compatible Go representation of v.
func Native(v Value) any {
	switch t := v.(type) {
	case Number:
		return json.Number(t.d.String())
	case String:
		return string(t)
	case Boolean:
		return bool(t)
	default:
		return nil
	}
}

// Equal reports whether a and b hold the same variant and payload. Numbers
// compare numerically, so 2 and 2.0 are equal. Two nil values are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)

		return ok && x.d.Equal(y.d)
	case String:
		y, ok := b.(String)

		return ok && x == y
	case Boolean:
		y, ok := b.(Boolean)

		return ok && x == y
	}

	return false
}

// Format renders v as formula literal text: strings are quoted and a nil
// value is rendered as null.
func Format(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case String:
		return quote(string(t))
	default:
		return t.String()
	}
}

func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('\'')

	for _, r := range s {
		switch r {
		case '\'', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('\'')

	return sb.String()
}

func kindName(v Value) string {
	if v == nil {
		return "null"
	}

	return v.Kind().String()
}
