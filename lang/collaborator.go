package lang

import (
	"context"

	"github.com/shopspring/decimal"
)

// GWP resolves the global warming potential of a gas or category key: the
// factor converting a mass of that gas into CO2-equivalent mass.
type GWP interface {
	GWP(ctx context.Context, key string) (decimal.Decimal, error)
}

// EmissionFactors resolves the multiplier converting an activity quantity
// into emitted mass.
type EmissionFactors interface {
	EmissionFactor(ctx context.Context, key string) (decimal.Decimal, error)
}

// Calculations resolves precomputed values by key.
type Calculations interface {
	Value(ctx context.Context, key string) (Value, error)
}

// Formulas resolves the text of a named formula for REF.
type Formulas interface {
	Formula(ctx context.Context, key string) (string, error)
}

// Units converts a quantity between named units.
type Units interface {
	Convert(ctx context.Context, v decimal.Decimal, from, to string) (decimal.Decimal, error)
}

