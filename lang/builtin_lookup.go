package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	register(&builtin{
		name:     "IMPACT",
		params:   []string{"gas", "quantity"},
		required: 1,
		summary:  "global warming potential of gas times quantity (default 1)",
		fn:       builtinImpact,
	})
	register(&builtin{
		name:     "LOOKUP",
		params:   []string{"activity", "quantity"},
		required: 1,
		summary:  "emission factor of activity times quantity (default 1)",
		fn:       builtinLookup,
	})
	register(&builtin{
		name:     "GET_VALUE",
		params:   []string{"key", "default"},
		required: 1,
		summary:  "resolved calculation value of key, or default when not found",
		fn:       builtinGetValue,
	})
	register(&builtin{
		name:     "REF",
		params:   []string{"key"},
		required: 1,
		summary:  "value of the named formula evaluated against this environment",
		fn:       builtinRef,
	})
	register(&builtin{
		name:     "CONVERT",
		params:   []string{"value", "from", "to"},
		required: 3,
		summary:  "value converted from one unit to another",
		fn:       builtinConvert,
	})
	register(&builtin{
		name:     "ASSIGN_TO_GROUP",
		params:   []string{"group", "value"},
		required: 2,
		summary:  "adds value to the group total in the environment and returns the total",
		fn:       builtinAssignToGroup,
	})
}

var one = decimal.NewFromInt(1)

func (in *invocation) noCollaborator() *EvaluationError {
	return newEvalError(ExternalLookup, in.call.At, "%s", in.call.Name).wrap(ErrNoCollaborator)
}

func (in *invocation) trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	in.ev.logger.TraceContext(ctx, msg,
		append([]slog.Attr{slog.String("function", in.call.Name)}, attrs...)...)
}

// factor resolves key through resolve and scales it by the optional
// quantity argument.
func (in *invocation) factor(
	ctx context.Context,
	resolve func(context.Context, string) (decimal.Decimal, error),
) (Value, error) {
	key, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	qty, err := in.numberOr(ctx, 1, one)
	if err != nil {
		return nil, err
	}

	in.trace(ctx, "resolve factor", slog.String("key", key))

	f, err := resolve(ctx, key)
	if err != nil {
		return nil, lookupError(in.call, key, err)
	}

	return NewNumber(f.Mul(qty)), nil
}

func builtinImpact(ctx context.Context, in *invocation) (Value, error) {
	if in.ev.gwp == nil {
		return nil, in.noCollaborator()
	}

	return in.factor(ctx, in.ev.gwp.GWP)
}

func builtinLookup(ctx context.Context, in *invocation) (Value, error) {
	if in.ev.emission == nil {
		return nil, in.noCollaborator()
	}

	return in.factor(ctx, in.ev.emission.EmissionFactor)
}

func builtinGetValue(ctx context.Context, in *invocation) (Value, error) {
	if in.ev.calculations == nil {
		return nil, in.noCollaborator()
	}

	key, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	in.trace(ctx, "resolve value", slog.String("key", key))

	v, err := in.ev.calculations.Value(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) && in.has(1) {
			return in.arg(ctx, 1)
		}

		return nil, lookupError(in.call, key, err)
	}

	return v, nil
}

func builtinRef(ctx context.Context, in *invocation) (Value, error) {
	if in.ev.formulas == nil {
		return nil, in.noCollaborator()
	}

	key, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	chain := append(slices.Clone(in.chain), key)
	chainAttr := slog.String("chain", strings.Join(chain, " -> "))

	if slices.Contains(in.chain, key) {
		return nil, lookupError(in.call, key, ErrReferenceCycle.With(chainAttr))
	}

	if len(in.chain) >= in.ev.maxDepth {
		return nil, lookupError(in.call, key, ErrMaxDepthExceeded.With(
			slog.Int("max_depth", in.ev.maxDepth), chainAttr))
	}

	in.trace(ctx, "resolve formula", slog.String("key", key), chainAttr)

	text, err := in.ev.formulas.Formula(ctx, key)
	if err != nil {
		return nil, lookupError(in.call, key, err)
	}

	tree, err := in.ev.Parse(ctx, text)
	if err != nil {
		return nil, lookupError(in.call, key, err)
	}

	in.chain = chain
	defer func() { in.chain = chain[:len(chain)-1] }()

	return in.eval(ctx, tree.Root)
}

func builtinConvert(ctx context.Context, in *invocation) (Value, error) {
	v, err := in.number(ctx, 0)
	if err != nil {
		return nil, err
	}

	from, err := in.text(ctx, 1)
	if err != nil {
		return nil, err
	}

	to, err := in.text(ctx, 2)
	if err != nil {
		return nil, err
	}

	in.trace(ctx, "convert", slog.String("from", from), slog.String("to", to))

	d, err := in.ev.units.Convert(ctx, v, from, to)
	if err != nil {
		return nil, lookupError(in.call, from+" -> "+to, err)
	}

	return NewNumber(d), nil
}

func builtinAssignToGroup(ctx context.Context, in *invocation) (Value, error) {
	group, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	v, err := in.number(ctx, 1)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero

	switch cur := in.env[group].(type) {
	case nil:
	case Number:
		total = cur.d
	default:
		return nil, newEvalError(TypeMismatch, in.call.At,
			"%s group %q holds %s, not Number", in.call.Name, group, kindName(cur))
	}

	sum := NewNumber(total.Add(v))

	if err := in.env.Set(group, sum); err != nil {
		return nil, newEvalError(InvalidEnvironment, in.call.At, "cannot set %q", group).wrap(err)
	}

	in.trace(ctx, "assign to group", slog.String("group", group), slog.String("total", sum.String()))

	return sum, nil
}
