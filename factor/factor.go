// Package factor provides the data sources behind the formula keywords
// IMPACT, LOOKUP, GET_VALUE, and REF.
//
// A [Source] answers all four lookups. [Table] holds factors in memory and
// is usually loaded from YAML with [LoadYAML]; [Store] keeps them in a
// SQLite database. [Chain] consults several sources in order and [Cached]
// memoizes another source for the lifetime of a session.
//
// Every source reports a missing key with an error matching
// [lang.ErrNotFound].
package factor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/lang"
)

// Kind names a class of keyed data.
type Kind string

const (
	KindGWP      Kind = "gwp"      // global warming potential per gas
	KindEmission Kind = "emission" // emission factor per activity
	KindValue    Kind = "value"    // precomputed calculation value
	KindFormula  Kind = "formula"  // named formula text
)

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindGWP, KindEmission, KindValue, KindFormula}
}

// ParseKind parses a kind name, ignoring case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))

	switch k {
	case KindGWP, KindEmission, KindValue, KindFormula:
		return k, nil
	}

	return "", ErrUnknownKind.With(slog.String("kind", s))
}

// Predefined errors (sentinel values).
var (
	ErrUnknownKind  = lang.NewError("unknown factor kind")
	ErrNotNumeric   = lang.NewError("factor is not a number")
	ErrInvalidTable = lang.NewError("invalid factor table")
	ErrStore        = lang.NewError("factor store")
)

// Source resolves every kind of factor data.
type Source interface {
	lang.GWP
	lang.EmissionFactors
	lang.Calculations
	lang.Formulas
}

func notFound(kind Kind, key string) error {
	return lang.ErrNotFound.With(slog.String("kind", string(kind)), slog.String("key", key))
}

// Options returns evaluator options that route every lookup through src.
func Options(src Source) []lang.Option {
	return []lang.Option{
		lang.WithGWP(src),
		lang.WithEmissionFactors(src),
		lang.WithCalculations(src),
		lang.WithFormulas(src),
	}
}

// Chain returns a Source that asks each of sources in turn, moving on only
// when a source reports the key as not found.
func Chain(sources ...Source) Source { return chain(sources) }

type chain []Source

func first[V any](c chain, kind Kind, key string, fn func(Source) (V, error)) (V, error) {
	for _, src := range c {
		v, err := fn(src)
		if err == nil || !errors.Is(err, lang.ErrNotFound) {
			return v, err
		}
	}

	var zero V

	return zero, notFound(kind, key)
}

func (c chain) GWP(ctx context.Context, key string) (decimal.Decimal, error) {
	return first(c, KindGWP, key, func(s Source) (decimal.Decimal, error) { return s.GWP(ctx, key) })
}

func (c chain) EmissionFactor(ctx context.Context, key string) (decimal.Decimal, error) {
	return first(c, KindEmission, key, func(s Source) (decimal.Decimal, error) {
		return s.EmissionFactor(ctx, key)
	})
}

func (c chain) Value(ctx context.Context, key string) (lang.Value, error) {
	return first(c, KindValue, key, func(s Source) (lang.Value, error) { return s.Value(ctx, key) })
}

func (c chain) Formula(ctx context.Context, key string) (string, error) {
	return first(c, KindFormula, key, func(s Source) (string, error) { return s.Formula(ctx, key) })
}
