// Package units converts quantities between measurement units of the same
// dimension using exact decimal factors.
package units

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Predefined errors (sentinel values).
var (
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrIncompatible = errors.New("incompatible units")
)

// Dimension is the physical quantity a unit measures.
type Dimension string

const (
	Mass     Dimension = "mass"
	Energy   Dimension = "energy"
	Volume   Dimension = "volume"
	Distance Dimension = "distance"
)

// Unit is a named unit and its size in the base unit of its dimension
// (kilogram, joule, cubic meter, meter).
type Unit struct {
	Name      string
	Dimension Dimension
	Factor    decimal.Decimal
}

// DefaultPrecision is the number of decimal places kept when a conversion
// divides by a factor.
const DefaultPrecision int32 = 32

// Converter converts quantities between registered units. It is safe for
// concurrent use once constructed.
type Converter struct {
	units     map[string]Unit
	precision int32
}

// Option configures a Converter.
type Option func(*Converter)

// WithUnit registers an additional unit, or replaces a predefined one,
// under name and each alias.
func WithUnit(u Unit, aliases ...string) Option {
	return func(c *Converter) {
		for _, name := range append([]string{u.Name}, aliases...) {
			c.units[normalize(name)] = u
		}
	}
}

// WithPrecision sets the decimal places kept by division.
func WithPrecision(places int32) Option {
	return func(c *Converter) {
		if places > 0 {
			c.precision = places
		}
	}
}

// NewConverter returns a Converter that knows the predefined units.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		units:     make(map[string]Unit, len(table)),
		precision: DefaultPrecision,
	}

	for _, def := range table {
		u := Unit{
			Name:      def.names[0],
			Dimension: def.dim,
			Factor:    decimal.RequireFromString(def.factor),
		}

		for _, name := range def.names {
			c.units[normalize(name)] = u
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the unit registered under name, ignoring case and
// surrounding space.
func (c *Converter) Lookup(name string) (Unit, error) {
	u, ok := c.units[normalize(name)]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}

	return u, nil
}

// Convert expresses v, measured in from, in the unit to.
func (c *Converter) Convert(
	_ context.Context,
	v decimal.Decimal,
	from, to string,
) (decimal.Decimal, error) {
	src, err := c.Lookup(from)
	if err != nil {
		return decimal.Decimal{}, err
	}

	dst, err := c.Lookup(to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if src.Dimension != dst.Dimension {
		return decimal.Decimal{}, fmt.Errorf("%w: %s (%s) to %s (%s)",
			ErrIncompatible, from, src.Dimension, to, dst.Dimension)
	}

	if src.Factor.Equal(dst.Factor) {
		return v, nil
	}

	return v.Mul(src.Factor).DivRound(dst.Factor, c.precision), nil
}

// Units returns an iterator over the canonical units of dim, sorted by
// name. An empty dim yields every unit.
func (c *Converter) Units(dim Dimension) iter.Seq[Unit] {
	seen := map[string]Unit{}

	for _, u := range c.units {
		if dim == "" || u.Dimension == dim {
			seen[u.Name] = u
		}
	}

	return func(yield func(Unit) bool) {
		for _, name := range slices.Sorted(maps.Keys(seen)) {
			if !yield(seen[name]) {
				return
			}
		}
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// table lists the predefined units. The first name is canonical.
var table = []struct {
	names  []string
	dim    Dimension
	factor string
}{
	{[]string{"kg", "kilogram", "kilograms"}, Mass, "1"},
	{[]string{"g", "gram", "grams"}, Mass, "0.001"},
	{[]string{"mg", "milligram", "milligrams"}, Mass, "0.000001"},
	{[]string{"t", "tonne", "tonnes", "mt", "metric_ton"}, Mass, "1000"},
	{[]string{"kt", "kilotonne", "kilotonnes"}, Mass, "1000000"},
	{[]string{"lb", "lbs", "pound", "pounds"}, Mass, "0.45359237"},
	{[]string{"oz", "ounce", "ounces"}, Mass, "0.028349523125"},
	{[]string{"short_ton", "ton", "tons"}, Mass, "907.18474"},
	{[]string{"long_ton"}, Mass, "1016.0469088"},

	{[]string{"j", "joule", "joules"}, Energy, "1"},
	{[]string{"kj", "kilojoule"}, Energy, "1000"},
	{[]string{"mj", "megajoule"}, Energy, "1000000"},
	{[]string{"gj", "gigajoule"}, Energy, "1000000000"},
	{[]string{"tj", "terajoule"}, Energy, "1000000000000"},
	{[]string{"wh", "watt_hour"}, Energy, "3600"},
	{[]string{"kwh", "kilowatt_hour"}, Energy, "3600000"},
	{[]string{"mwh", "megawatt_hour"}, Energy, "3600000000"},
	{[]string{"gwh", "gigawatt_hour"}, Energy, "3600000000000"},
	{[]string{"btu"}, Energy, "1055.05585262"},
	{[]string{"mmbtu"}, Energy, "1055055852.62"},
	{[]string{"therm", "therms"}, Energy, "105480400"},

	{[]string{"m3", "cubic_meter", "cubic_meters"}, Volume, "1"},
	{[]string{"l", "liter", "liters", "litre", "litres"}, Volume, "0.001"},
	{[]string{"ml", "milliliter", "milliliters"}, Volume, "0.000001"},
	{[]string{"gal", "gallon", "gallons", "us_gal"}, Volume, "0.003785411784"},
	{[]string{"bbl", "barrel", "barrels"}, Volume, "0.158987294928"},
	{[]string{"ft3", "cf", "scf", "cubic_foot", "cubic_feet"}, Volume, "0.028316846592"},
	{[]string{"ccf"}, Volume, "2.8316846592"},
	{[]string{"mcf"}, Volume, "28.316846592"},

	{[]string{"m", "meter", "meters", "metre", "metres"}, Distance, "1"},
	{[]string{"km", "kilometer", "kilometers"}, Distance, "1000"},
	{[]string{"cm", "centimeter", "centimeters"}, Distance, "0.01"},
	{[]string{"mi", "mile", "miles"}, Distance, "1609.344"},
	{[]string{"ft", "foot", "feet"}, Distance, "0.3048"},
	{[]string{"yd", "yard", "yards"}, Distance, "0.9144"},
	{[]string{"nmi", "nautical_mile"}, Distance, "1852"},
}
