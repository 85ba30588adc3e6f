package lang

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/log"
	"github.com/ardnew/ecalc/units"
)

// Evaluator parses and evaluates formulas. It holds configuration only and
// is safe for concurrent use; the Environment passed to each call is not.
type Evaluator struct {
	gwp          GWP
	emission     EmissionFactors
	calculations Calculations
	formulas     Formulas
	units        Units

	extensions map[string]Function
	functions  map[string]Function

	location  *time.Location
	locale    string
	clock     func() time.Time
	precision int32
	maxDepth  int

	logger log.Logger
	cache  *parseCache
}

// New returns an Evaluator configured by opts.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{}

	applyDefaults(ev)

	for _, opt := range opts {
		opt(ev)
	}

	if ev.units == nil {
		ev.units = units.NewConverter()
	}

	return ev
}

// Request is a formula and the environment it is evaluated against.
type Request struct {
	Expression  string      `json:"expression"  yaml:"expression"`
	Environment Environment `json:"environment" yaml:"environment"`
}

// Result holds the value of a successful evaluation.
type Result struct {
	Result Value `json:"result" yaml:"result"`
}

// Evaluate parses expression and evaluates it against env using an
// Evaluator configured by opts.
func Evaluate(ctx context.Context, expression string, env Environment, opts ...Option) (Value, error) {
	return New(opts...).Evaluate(ctx, expression, env)
}

// Evaluate parses expression and evaluates it against env.
//
// Parsing completes before evaluation begins, so a syntax error never
// modifies env. A semantic error keeps the bindings made before it.
func (ev *Evaluator) Evaluate(ctx context.Context, expression string, env Environment) (Value, error) {
	tree, err := ev.Parse(ctx, expression)
	if err != nil {
		return nil, err
	}

	return ev.Eval(ctx, tree, env)
}

// Do evaluates req.
func (ev *Evaluator) Do(ctx context.Context, req Request) (Result, error) {
	v, err := ev.Evaluate(ctx, req.Expression, req.Environment)
	if err != nil {
		return Result{}, err
	}

	return Result{Result: v}, nil
}

// Parse parses expression, consulting the parse cache when enabled.
func (ev *Evaluator) Parse(ctx context.Context, expression string) (*Tree, error) {
	if ev.cache != nil {
		if tree, ok := ev.cache.load(expression); ok {
			ev.logger.TraceContext(ctx, "parse cache hit",
				slog.String("expression", expression))

			return tree, nil
		}
	}

	tree, err := parse(expression)
	if err != nil {
		ev.logger.TraceContext(ctx, "parse failed",
			slog.String("expression", expression),
			slog.Any("error", err))

		return nil, err
	}

	ev.logger.TraceContext(ctx, "parsed",
		slog.String("expression", expression),
		slog.String("tree", tree.String()))

	if ev.cache != nil {
		ev.cache.store(tree)
	}

	return tree, nil
}

// Eval evaluates tree against env.
func (ev *Evaluator) Eval(ctx context.Context, tree *Tree, env Environment) (Value, error) {
	start := ev.clock()
	s := &session{ev: ev, env: env}

	v, err := s.eval(ctx, tree.Root)
	if err != nil {
		ev.logger.TraceContext(ctx, "evaluation failed",
			slog.String("expression", tree.Source),
			slog.Any("error", err))

		return nil, err
	}

	ev.logger.TraceContext(ctx, "evaluated",
		slog.String("expression", tree.Source),
		slog.String("result", Format(v)),
		slog.Duration("elapsed", ev.clock().Sub(start)))

	return v, nil
}

// session is the state of one evaluation: the shared environment and the
// chain of formulas entered through REF.
type session struct {
	ev    *Evaluator
	env   Environment
	chain []string
}

func (s *session) eval(ctx context.Context, n Node) (Value, error) {
	switch v := n.(type) {
	case *Literal:
		return v.Value, nil

	case *Variable:
		val, ok := s.env[v.Name]
		if !ok {
			return nil, newEvalError(UnknownVariable, v.At, "%q", v.Name).
				with(slog.String("name", v.Name))
		}

		return val, nil

	case *Unary:
		x, err := s.eval(ctx, v.Operand)
		if err != nil {
			return nil, err
		}

		num, ok := x.(Number)
		if !ok {
			return nil, newEvalError(TypeMismatch, v.At,
				"operator '-' requires a Number operand, got %s", kindName(x))
		}

		return NewNumber(num.d.Neg()), nil

	case *Binary:
		return s.binary(ctx, v)

	case *Assign:
		val, err := s.eval(ctx, v.Value)
		if err != nil {
			return nil, err
		}

		if err := s.env.Set(v.Name, val); err != nil {
			return nil, newEvalError(InvalidEnvironment, v.At, "cannot set %q", v.Name).wrap(err)
		}

		s.ev.logger.TraceContext(ctx, "set",
			slog.String("name", v.Name),
			slog.String("value", Format(val)))

		return val, nil

	case *Call:
		return s.call(ctx, v)
	}

	return nil, ErrInvalidExpression.With(slog.String("node", typeName(n)))
}

func (s *session) binary(ctx context.Context, b *Binary) (Value, error) {
	l, err := s.eval(ctx, b.Left)
	if err != nil {
		return nil, err
	}

	r, err := s.eval(ctx, b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpEQ, OpNE:
		if l != nil && r != nil && l.Kind() != r.Kind() {
			return nil, newEvalError(TypeMismatch, b.At,
				"operator '%s' requires operands of the same kind, got %s and %s",
				b.Op, kindName(l), kindName(r))
		}

		eq := Equal(l, r)
		if b.Op == OpNE {
			eq = !eq
		}

		return Boolean(eq), nil

	case OpLT, OpLE, OpGT, OpGE:
		c, ok := compare(l, r)
		if !ok {
			return nil, newEvalError(TypeMismatch, b.At,
				"operator '%s' requires two Number or two String operands, got %s and %s",
				b.Op, kindName(l), kindName(r))
		}

		switch b.Op {
		case OpLT:
			return Boolean(c < 0), nil
		case OpLE:
			return Boolean(c <= 0), nil
		case OpGT:
			return Boolean(c > 0), nil
		default:
			return Boolean(c >= 0), nil
		}
	}

	x, xok := l.(Number)
	y, yok := r.(Number)

	if !xok || !yok {
		return nil, newEvalError(TypeMismatch, b.At,
			"operator '%s' requires Number operands, got %s and %s",
			b.Op, kindName(l), kindName(r))
	}

	d, err := s.arithmetic(b.Op, x.d, y.d)
	if err != nil {
		return nil, newEvalError(Arithmetic, b.At, "operator '%s'", b.Op).wrap(err)
	}

	return NewNumber(d), nil
}

func (s *session) arithmetic(op Operator, x, y decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case OpAdd:
		return x.Add(y), nil

	case OpSub:
		return x.Sub(y), nil

	case OpMul:
		return x.Mul(y), nil

	case OpDiv:
		if y.IsZero() {
			return decimal.Decimal{}, ErrDivisionByZero
		}

		return x.DivRound(y, s.ev.precision), nil

	default:
		return power(x, y, s.ev.precision)
	}
}

// power raises x to y. Non-negative integral exponents are exact; other
// exponents keep precision fractional digits.
func power(x, y decimal.Decimal, precision int32) (decimal.Decimal, error) {
	if y.IsZero() {
		return decimal.NewFromInt(1), nil
	}

	if y.IsInteger() && y.IsPositive() {
		return x.Pow(y), nil
	}

	return x.PowWithPrecision(y, precision)
}

func compare(l, r Value) (int, bool) {
	switch x := l.(type) {
	case Number:
		if y, ok := r.(Number); ok {
			return x.d.Cmp(y.d), true
		}

	case String:
		if y, ok := r.(String); ok {
			return strings.Compare(string(x), string(y)), true
		}
	}

	return 0, false
}

func (s *session) call(ctx context.Context, c *Call) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, newEvalError(ExternalLookup, c.At, "%s canceled", c.Name).wrap(err)
	}

	if c.Custom {
		fn, ok := s.ev.functions[strings.ToLower(c.Name)]
		if !ok {
			return nil, newEvalError(FunctionArgument, c.At, "%s", c.Name).
				wrap(ErrUnknownFunction.With(slog.String("name", c.Name)))
		}

		return s.invoke(ctx, c, fn)
	}

	if fn, ok := s.ev.extensions[c.Name]; ok {
		return s.invoke(ctx, c, fn)
	}

	b, ok := builtins[c.Name]
	if !ok {
		return nil, newEvalError(FunctionArgument, c.At, "%s", c.Name).wrap(ErrUnknownFunction)
	}

	slots, err := b.bind(c)
	if err != nil {
		return nil, err
	}

	s.ev.logger.TraceContext(ctx, "call",
		slog.String("function", c.Name),
		slog.Int("args", len(c.Args)),
		c.At.attr())

	return b.fn(ctx, &invocation{session: s, call: c, slots: slots, def: b})
}

// invoke evaluates every argument of c and passes them to fn.
func (s *session) invoke(ctx context.Context, c *Call, fn Function) (Value, error) {
	var args Arguments

	for _, a := range c.Args {
		if a.Name == "" && len(args.Named) > 0 {
			return nil, newEvalError(FunctionArgument, a.Value.Pos(),
				"%s: positional argument after named argument", c.Name)
		}

		v, err := s.eval(ctx, a.Value)
		if err != nil {
			return nil, err
		}

		if a.Name == "" {
			args.Positional = append(args.Positional, v)

			continue
		}

		if args.Named == nil {
			args.Named = map[string]Value{}
		}

		args.Named[a.Name] = v
	}

	s.ev.logger.TraceContext(ctx, "call extension",
		slog.String("function", c.Name),
		slog.Int("args", len(c.Args)),
		c.At.attr())

	v, err := fn(ctx, args)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return nil, err
		}

		return nil, newEvalError(ExternalLookup, c.At, "%s", c.Name).wrap(err)
	}

	return v, nil
}

// lookupError reports a failed collaborator call for fn and key.
func lookupError(c *Call, key string, err error) *EvaluationError {
	return newEvalError(ExternalLookup, c.At, "%s %s", c.Name, strconv.Quote(key)).
		wrap(err).
		with(slog.String("function", c.Name), slog.String("key", key))
}
