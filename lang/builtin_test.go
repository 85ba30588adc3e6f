package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// factors is an in-memory resolver for every collaborator interface.
type factors struct {
	gwp      map[string]string
	emission map[string]string
	values   map[string]Value
	formulas map[string]string
	calls    int
}

func (f *factors) resolve(table map[string]string, key string) (decimal.Decimal, error) {
	f.calls++

	s, ok := table[key]
	if !ok {
		return decimal.Decimal{}, ErrNotFound.With(slog.String("key", key))
	}

	return decimal.RequireFromString(s), nil
}

func (f *factors) GWP(_ context.Context, key string) (decimal.Decimal, error) {
	return f.resolve(f.gwp, key)
}

func (f *factors) EmissionFactor(_ context.Context, key string) (decimal.Decimal, error) {
	return f.resolve(f.emission, key)
}

func (f *factors) Value(_ context.Context, key string) (Value, error) {
	f.calls++

	v, ok := f.values[key]
	if !ok {
		return nil, ErrNotFound.With(slog.String("key", key))
	}

	return v, nil
}

func (f *factors) Formula(_ context.Context, key string) (string, error) {
	f.calls++

	s, ok := f.formulas[key]
	if !ok {
		return "", ErrNotFound.With(slog.String("key", key))
	}

	return s, nil
}

func newFactors() *factors {
	return &factors{
		gwp:      map[string]string{"CH4": "28", "N2O": "265", "CO2": "1"},
		emission: map[string]string{"diesel": "2.68", "electricity": "0.4"},
		values:   map[string]Value{"fleet.size": NumberFromInt(12), "region": String("EU")},
		formulas: map[string]string{
			"fuel":     "LOOKUP('diesel', :litres)",
			"methane":  "IMPACT('CH4', :kg)",
			"total":    "REF('fuel') + REF('methane')",
			"loop.a":   "REF('loop.b') + 1",
			"loop.b":   "REF('loop.a') + 1",
			"self":     "REF('self')",
			"broken":   "1 +",
			"grouping": "ASSIGN_TO_GROUP('scope1', REF('fuel'))",
		},
	}
}

func withFactors(f *factors) []Option {
	return []Option{
		WithGWP(f),
		WithEmissionFactors(f),
		WithCalculations(f),
		WithFormulas(f),
	}
}

func TestBuiltins(t *testing.T) {
	env := func() Environment {
		return Environment{
			"litres": NumberFromInt(100),
			"kg":     decimal2("0.5"),
			"name":   String("Diesel Truck"),
			"none":   nil,
			"flag":   Boolean(true),
		}
	}

	tests := []struct {
		input string
		want  Value
	}{
		{"IF(:flag, 'yes', 'no')", String("yes")},
		{"IF(false, 'yes', 'no')", String("no")},
		{"IF(false, 'yes')", nil},
		{"IF(condition = true, then = 1, else = 2)", NumberFromInt(1)},
		{"IF(true, 1, :undefined)", NumberFromInt(1)},
		{"SWITCH(2, 1, 'one', 2, 'two', 'other')", String("two")},
		{"SWITCH(9, 1, 'one', 2, 'two', 'other')", String("other")},
		{"SWITCH(9, 1, 'one')", nil},
		{"SWITCH('a', 'A', 1, 'a', 2)", NumberFromInt(2)},
		{"COALESCE(null, :none, 3, :undefined)", NumberFromInt(3)},
		{"COALESCE(null)", nil},
		{"CONCAT('a', 1, null, true)", String("a1true")},
		{"UPPERCASE(:name)", String("DIESEL TRUCK")},
		{"LOWERCASE(:name)", String("diesel truck")},
		{"LOWERCASE(null)", nil},
		{"SEARCH(:name, 'truck')", NumberFromInt(8)},
		{"SEARCH(:name, 'e', 4)", NumberFromInt(5)},
		{"SEARCH(:name, 'bus')", NumberFromInt(0)},
		{"SEARCH('İstanbul Ankara', 'ANKARA')", NumberFromInt(10)},
		{"SEARCH('Straße', 'SSE', 1)", NumberFromInt(0)},
		{"SEARCH('abc', '', 2)", NumberFromInt(2)},
		{"SPLIT('a,b,c', ',', 1)", String("b")},
		{"SPLIT('a,b,c', ',', -1)", String("c")},
		{"SPLIT('a,b,c', ',', 3)", nil},
		{"IMPACT('CH4', :kg)", NumberFromInt(14)},
		{"IMPACT('N2O')", NumberFromInt(265)},
		{"IMPACT(gas = 'CO2', quantity = 7)", NumberFromInt(7)},
		{"LOOKUP('diesel', :litres)", NumberFromInt(268)},
		{"LOOKUP('electricity', 1000)", NumberFromInt(400)},
		{"GET_VALUE('fleet.size')", NumberFromInt(12)},
		{"GET_VALUE('missing', 5)", NumberFromInt(5)},
		{"GET_VALUE('region')", String("EU")},
		{"REF('total')", NumberFromInt(282)},
		{"CONVERT(2, 't', 'kg')", NumberFromInt(2000)},
		{"CONVERT(1, 'kWh', 'MJ')", decimal2("3.6")},
		{"LOOKUP('diesel', CONVERT(:litres, 'L', 'L'))", NumberFromInt(268)},
	}

	f := newFactors()

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Evaluate(t.Context(), tt.input, env(), withFactors(f)...)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.input, err)
			}

			if !Equal(v, tt.want) {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.input, Format(v), Format(tt.want))
			}
		})
	}
}

func decimal2(s string) Number { return NewNumber(decimal.RequireFromString(s)) }

func TestBuiltin_AssignToGroup(t *testing.T) {
	f := newFactors()
	ev := New(withFactors(f)...)
	env := Environment{"litres": NumberFromInt(10)}

	for range 3 {
		if _, err := ev.Evaluate(t.Context(), "REF('grouping')", env); err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
	}

	if want := decimal2("80.4"); !Equal(env["scope1"], want) {
		t.Errorf("env[scope1] = %s, want %s", Format(env["scope1"]), Format(want))
	}

	env["label"] = String("x")

	_, err := ev.Evaluate(t.Context(), "ASSIGN_TO_GROUP('label', 1)", env)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Evaluate() error = %v, want type mismatch", err)
	}
}

func TestBuiltin_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  ErrorKind
		is    error
	}{
		{"IF(1, 2, 3)", TypeMismatch, ErrTypeMismatch},
		{"IF(true)", FunctionArgument, ErrFunctionArgument},
		{"IF(true, 1, 2, 3)", FunctionArgument, ErrFunctionArgument},
		{"IF(then = 1, true)", FunctionArgument, ErrFunctionArgument},
		{"IF(true, 1, bogus = 2)", FunctionArgument, ErrFunctionArgument},
		{"SWITCH(1, 2)", FunctionArgument, ErrFunctionArgument},
		{"COALESCE(value = 1)", FunctionArgument, ErrFunctionArgument},
		{"UPPERCASE(1)", TypeMismatch, ErrTypeMismatch},
		{"SEARCH('abc', 'a', 9)", FunctionArgument, ErrFunctionArgument},
		{"SPLIT('a,b', ',', 0.5)", FunctionArgument, ErrFunctionArgument},
		{"IMPACT('SF6')", ExternalLookup, ErrNotFound},
		{"GET_VALUE('missing')", ExternalLookup, ErrNotFound},
		{"REF('self')", ExternalLookup, ErrReferenceCycle},
		{"REF('loop.a')", ExternalLookup, ErrReferenceCycle},
		{"REF('broken')", ExternalLookup, ErrExternalLookup},
		{"REF('nothing')", ExternalLookup, ErrNotFound},
		{"CONVERT(1, 'kg', 'kWh')", ExternalLookup, ErrExternalLookup},
		{"CONVERT('1', 'kg', 'g')", TypeMismatch, ErrTypeMismatch},
		{"CAML(1)", ExternalLookup, ErrNoCollaborator},
	}

	f := newFactors()

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Evaluate(t.Context(), tt.input, Environment{}, withFactors(f)...)

			var ee *EvaluationError
			if !errors.As(err, &ee) {
				t.Fatalf("Evaluate(%q) error = %v, want *EvaluationError", tt.input, err)
			}

			if ee.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s (%v)", ee.Kind, tt.kind, err)
			}

			if !errors.Is(err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.is)
			}
		})
	}
}

func TestBuiltin_NoCollaborator(t *testing.T) {
	for _, input := range []string{"IMPACT('CH4')", "LOOKUP('diesel')", "GET_VALUE('x')", "REF('x')"} {
		_, err := Evaluate(t.Context(), input, nil)
		if !errors.Is(err, ErrExternalLookup) || !errors.Is(err, ErrNoCollaborator) {
			t.Errorf("Evaluate(%q) error = %v, want external lookup without collaborator", input, err)
		}
	}
}

func TestBuiltin_MaxDepth(t *testing.T) {
	f := &factors{formulas: map[string]string{
		"d0": "REF('d1')", "d1": "REF('d2')", "d2": "REF('d3')", "d3": "1",
	}}

	_, err := Evaluate(t.Context(), "REF('d0')", nil, WithFormulas(f), WithMaxDepth(2))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("Evaluate() error = %v, want max depth exceeded", err)
	}

	v, err := Evaluate(t.Context(), "REF('d0')", nil, WithFormulas(f), WithMaxDepth(4))
	if err != nil || !Equal(v, NumberFromInt(1)) {
		t.Errorf("Evaluate() = %s, %v, want 1", Format(v), err)
	}
}

func TestBuiltin_CustomFunction(t *testing.T) {
	double := func(_ context.Context, args Arguments) (Value, error) {
		n, ok := args.Positional[0].(Number)
		if !ok {
			return nil, errors.New("not a number")
		}

		scale := decimal.NewFromInt(2)
		if s, ok := args.Named["scale"].(Number); ok {
			scale = s.Decimal()
		}

		return NewNumber(n.Decimal().Mul(scale)), nil
	}

	ev := New(WithFunction("Double", double))

	tests := []struct {
		input string
		want  Value
	}{
		{"double(21)", NumberFromInt(42)},
		{"DOUBLE(2, scale = 5)", NumberFromInt(10)},
	}

	for _, tt := range tests {
		v, err := ev.Evaluate(t.Context(), tt.input, nil)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", tt.input, err)
		}

		if !Equal(v, tt.want) {
			t.Errorf("Evaluate(%q) = %s, want %s", tt.input, Format(v), Format(tt.want))
		}
	}

	_, err := ev.Evaluate(t.Context(), "double('x')", nil)
	if !errors.Is(err, ErrExternalLookup) {
		t.Errorf("Evaluate() error = %v, want external lookup", err)
	}
}

func TestBuiltin_Extension(t *testing.T) {
	caml := func(_ context.Context, args Arguments) (Value, error) {
		parts := make([]string, len(args.Positional))
		for i, v := range args.Positional {
			parts[i] = v.String()
		}

		return String(strings.Join(parts, "/")), nil
	}

	v, err := Evaluate(t.Context(), "CAML('a', 1)", nil, WithExtension("caml", caml))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !Equal(v, String("a/1")) {
		t.Errorf("Evaluate() = %s, want 'a/1'", Format(v))
	}
}

func TestFunctions(t *testing.T) {
	infos := Functions()

	var set bool

	for i, info := range infos {
		if info.Name == "SET" {
			set = true
		}

		if i > 0 {
			prev, _ := keyword(infos[i-1].Name)
			cur, _ := keyword(info.Name)

			if prev >= cur {
				t.Errorf("Functions() out of keyword order at %s", info.Name)
			}
		}
	}

	if set {
		t.Error("Functions() lists SET, which is not a function")
	}

	if len(infos) != 16 {
		t.Errorf("len(Functions()) = %d, want 16", len(infos))
	}

	if got, want := infos[0].Signature, "AS_TIMESTAMP(value, pattern, [timezone], [locale], [roundDownTo])"; got != want {
		t.Errorf("Signature = %s, want %s", got, want)
	}
}
