package lang

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// FunctionInfo describes a keyword function.
type FunctionInfo struct {
	Name      string   `json:"name"      yaml:"name"`
	Signature string   `json:"signature" yaml:"signature"`
	Summary   string   `json:"summary"   yaml:"summary"`
	Params    []string `json:"params"    yaml:"params"` // as displayed in Signature
}

// Functions lists the keyword functions in keyword order.
func Functions() []FunctionInfo {
	out := make([]FunctionInfo, 0, len(builtins))

	for sym := SymAsTimestamp; sym <= SymSearch; sym++ {
		if b, ok := builtins[sym.String()]; ok {
			out = append(out, FunctionInfo{
				Name:      b.name,
				Signature: b.signature(),
				Summary:   b.summary,
				Params:    b.displayParams(),
			})
		}
	}

	return out
}

// builtin is a keyword function. Arguments bind to params by position or
// by name; the first required params must be present. A variadic builtin
// takes only positional arguments, at least required of them.
type builtin struct {
	name     string
	params   []string
	required int
	variadic bool
	summary  string
	fn       func(ctx context.Context, in *invocation) (Value, error)
}

var builtins = map[string]*builtin{}

func register(b *builtin) { builtins[b.name] = b }

func (b *builtin) signature() string {
	return b.name + "(" + strings.Join(b.displayParams(), ", ") + ")"
}

// displayParams returns the parameter names with optional ones bracketed
// and a trailing "..." for variadic builtins.
func (b *builtin) displayParams() []string {
	out := make([]string, 0, len(b.params)+1)

	for i, p := range b.params {
		if i >= b.required && !b.variadic {
			p = "[" + p + "]"
		}

		out = append(out, p)
	}

	if b.variadic {
		out = append(out, "...")
	}

	return out
}

func (b *builtin) argError(c *Call, format string, args ...any) *EvaluationError {
	return newEvalError(FunctionArgument, c.At, "%s: %s", b.name, fmt.Sprintf(format, args...)).
		with(slog.String("function", b.name))
}

// bind maps the arguments of c onto parameter slots.
func (b *builtin) bind(c *Call) ([]Node, error) {
	if b.variadic {
		slots := make([]Node, 0, len(c.Args))

		for _, a := range c.Args {
			if a.Name != "" {
				return nil, b.argError(c, "named arguments are not accepted")
			}

			slots = append(slots, a.Value)
		}

		if len(slots) < b.required {
			return nil, b.argError(c, "expects at least %d arguments, got %d", b.required, len(slots))
		}

		return slots, nil
	}

	slots := make([]Node, len(b.params))
	positional, named := 0, false

	for _, a := range c.Args {
		if a.Name == "" {
			if named {
				return nil, b.argError(c, "positional argument after named argument")
			}

			if positional >= len(b.params) {
				return nil, b.argError(c, "expects %s, got %d", b.arity(), len(c.Args))
			}

			slots[positional] = a.Value
			positional++

			continue
		}

		named = true

		i := slices.IndexFunc(b.params, func(p string) bool { return strings.EqualFold(p, a.Name) })
		if i < 0 {
			return nil, b.argError(c, "unknown argument %q", a.Name)
		}

		if slots[i] != nil {
			return nil, b.argError(c, "argument %q given twice", b.params[i])
		}

		slots[i] = a.Value
	}

	for i := range b.required {
		if slots[i] == nil {
			if !named {
				return nil, b.argError(c, "expects %s, got %d", b.arity(), len(c.Args))
			}

			return nil, b.argError(c, "missing argument %q", b.params[i])
		}
	}

	return slots, nil
}

func (b *builtin) arity() string {
	switch n := len(b.params); {
	case b.required == n && n == 1:
		return "1 argument"
	case b.required == n:
		return fmt.Sprintf("%d arguments", n)
	default:
		return fmt.Sprintf("%d to %d arguments", b.required, n)
	}
}

// invocation is one call of a builtin with its bound argument slots.
// Arguments are evaluated only when requested.
type invocation struct {
	*session

	call  *Call
	def   *builtin
	slots []Node
}

func (in *invocation) has(i int) bool { return i < len(in.slots) && in.slots[i] != nil }

func (in *invocation) pos(i int) Position {
	if in.has(i) {
		return in.slots[i].Pos()
	}

	return in.call.At
}

func (in *invocation) param(i int) string {
	if i < len(in.def.params) {
		return in.def.params[i]
	}

	return in.def.params[len(in.def.params)-1]
}

// arg evaluates slot i; an absent slot yields null.
func (in *invocation) arg(ctx context.Context, i int) (Value, error) {
	if !in.has(i) {
		return nil, nil
	}

	return in.eval(ctx, in.slots[i])
}

func (in *invocation) mismatch(i int, want Kind, got Value) *EvaluationError {
	return newEvalError(TypeMismatch, in.pos(i),
		"%s argument %q requires %s, got %s", in.def.name, in.param(i), want, kindName(got))
}

func (in *invocation) number(ctx context.Context, i int) (decimal.Decimal, error) {
	v, err := in.arg(ctx, i)
	if err != nil {
		return decimal.Decimal{}, err
	}

	n, ok := v.(Number)
	if !ok {
		return decimal.Decimal{}, in.mismatch(i, KindNumber, v)
	}

	return n.d, nil
}

// numberOr evaluates an optional Number argument.
func (in *invocation) numberOr(ctx context.Context, i int, def decimal.Decimal) (decimal.Decimal, error) {
	if !in.has(i) {
		return def, nil
	}

	return in.number(ctx, i)
}

func (in *invocation) text(ctx context.Context, i int) (string, error) {
	v, err := in.arg(ctx, i)
	if err != nil {
		return "", err
	}

	s, ok := v.(String)
	if !ok {
		return "", in.mismatch(i, KindString, v)
	}

	return string(s), nil
}

// textOr evaluates an optional String argument; null counts as absent.
func (in *invocation) textOr(ctx context.Context, i int, def string) (string, error) {
	v, err := in.arg(ctx, i)
	if err != nil || v == nil {
		return def, err
	}

	s, ok := v.(String)
	if !ok {
		return "", in.mismatch(i, KindString, v)
	}

	return string(s), nil
}

func (in *invocation) boolean(ctx context.Context, i int) (bool, error) {
	v, err := in.arg(ctx, i)
	if err != nil {
		return false, err
	}

	b, ok := v.(Boolean)
	if !ok {
		return false, in.mismatch(i, KindBoolean, v)
	}

	return bool(b), nil
}

// integer evaluates a Number argument that must be integral.
func (in *invocation) integer(ctx context.Context, i int) (int, error) {
	d, err := in.number(ctx, i)
	if err != nil {
		return 0, err
	}

	if !d.IsInteger() {
		return 0, newEvalError(FunctionArgument, in.pos(i),
			"%s argument %q must be an integer, got %s", in.def.name, in.param(i), d)
	}

	return int(d.IntPart()), nil
}

func (in *invocation) argError(i int, format string, args ...any) *EvaluationError {
	return newEvalError(FunctionArgument, in.pos(i), "%s: %s",
		in.def.name, fmt.Sprintf(format, args...))
}

func init() {
	register(&builtin{
		name:     "IF",
		params:   []string{"condition", "then", "else"},
		required: 2,
		summary:  "evaluates then when condition is true, else otherwise",
		fn:       builtinIf,
	})
	register(&builtin{
		name:     "SWITCH",
		params:   []string{"selector", "case", "result"},
		required: 3,
		variadic: true,
		summary:  "result of the first case equal to selector, or the trailing default",
		fn:       builtinSwitch,
	})
	register(&builtin{
		name:     "COALESCE",
		params:   []string{"value"},
		required: 1,
		variadic: true,
		summary:  "first argument that is not null",
		fn:       builtinCoalesce,
	})
	register(&builtin{
		name:    "CAML",
		params:  []string{"args"},
		summary: "extension point, requires a registered handler",
		fn: func(_ context.Context, in *invocation) (Value, error) {
			return nil, newEvalError(ExternalLookup, in.call.At, "%s", in.call.Name).
				wrap(ErrNoCollaborator)
		},
		variadic: true,
	})
}

func builtinIf(ctx context.Context, in *invocation) (Value, error) {
	cond, err := in.boolean(ctx, 0)
	if err != nil {
		return nil, err
	}

	if cond {
		return in.arg(ctx, 1)
	}

	return in.arg(ctx, 2)
}

func builtinSwitch(ctx context.Context, in *invocation) (Value, error) {
	sel, err := in.arg(ctx, 0)
	if err != nil {
		return nil, err
	}

	rest := len(in.slots) - 1

	for i := 1; i+1 < len(in.slots); i += 2 {
		c, err := in.arg(ctx, i)
		if err != nil {
			return nil, err
		}

		if Equal(sel, c) {
			return in.arg(ctx, i+1)
		}
	}

	if rest%2 == 1 {
		return in.arg(ctx, len(in.slots)-1)
	}

	return nil, nil
}

func builtinCoalesce(ctx context.Context, in *invocation) (Value, error) {
	for i := range in.slots {
		v, err := in.arg(ctx, i)
		if err != nil || v != nil {
			return v, err
		}
	}

	return nil, nil
}
