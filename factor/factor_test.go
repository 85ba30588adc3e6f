package factor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/lang"
)

const sample = `
gwp:
  CH4: 28
  N2O: 265
emission:
  diesel: 2.68
values:
  fleet.size: 12
  region: EU
formulas:
  fuel: LOOKUP('diesel', :litres)
  total: REF('fuel') + IMPACT('CH4', :kg)
`

func loadSample(t *testing.T) *Table {
	t.Helper()

	table, err := LoadYAML(t.Context(), strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	return table
}

func TestLoadYAML(t *testing.T) {
	table := loadSample(t)

	if n := table.Len(); n != 7 {
		t.Errorf("Len() = %d, want 7", n)
	}

	d, err := table.GWP(t.Context(), "N2O")
	if err != nil || !d.Equal(decimal.NewFromInt(265)) {
		t.Errorf("GWP(N2O) = %s, %v, want 265", d, err)
	}

	v, err := table.Value(t.Context(), "region")
	if err != nil || !lang.Equal(v, lang.String("EU")) {
		t.Errorf("Value(region) = %v, %v, want EU", v, err)
	}

	if _, err := table.EmissionFactor(t.Context(), "petrol"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("EmissionFactor(petrol) error = %v, want not found", err)
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"text factor", "gwp:\n  CH4: lots\n", ErrNotNumeric},
		{"bad formula", "formulas:\n  broken: 1 +\n", ErrInvalidTable},
		{"not a mapping", "- 1\n- 2\n", ErrInvalidTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(t.Context(), strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadYAML() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	table, err := LoadYAML(t.Context(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestTable_Evaluate(t *testing.T) {
	ev := lang.New(Options(loadSample(t))...)
	env := lang.Environment{"litres": lang.NumberFromInt(100), "kg": lang.NumberFromInt(2)}

	v, err := ev.Evaluate(t.Context(), "REF('total')", env)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !lang.Equal(v, lang.NumberFromInt(324)) {
		t.Errorf("Evaluate() = %s, want 324", lang.Format(v))
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + strings.ToUpper(string(k)) + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}

	if _, err := ParseKind("carbon"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(carbon) error = %v, want unknown kind", err)
	}
}

func TestChain(t *testing.T) {
	override := NewTable()
	if err := override.Put(t.Context(), KindGWP, "CH4", lang.NumberFromInt(30)); err != nil {
		t.Fatal(err)
	}

	src := Chain(override, loadSample(t))

	d, err := src.GWP(t.Context(), "CH4")
	if err != nil || !d.Equal(decimal.NewFromInt(30)) {
		t.Errorf("GWP(CH4) = %s, %v, want 30 from the first source", d, err)
	}

	d, err = src.GWP(t.Context(), "N2O")
	if err != nil || !d.Equal(decimal.NewFromInt(265)) {
		t.Errorf("GWP(N2O) = %s, %v, want 265 from the second source", d, err)
	}

	if _, err := src.Formula(t.Context(), "nothing"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("Formula(nothing) error = %v, want not found", err)
	}
}

// counting wraps a Source and counts lookups.
type counting struct {
	Source

	calls int
}

func (c *counting) EmissionFactor(ctx context.Context, key string) (decimal.Decimal, error) {
	c.calls++

	return c.Source.EmissionFactor(ctx, key)
}

func TestCached(t *testing.T) {
	inner := &counting{Source: loadSample(t)}
	src := Cached(inner)

	for range 3 {
		if _, err := src.EmissionFactor(t.Context(), "diesel"); err != nil {
			t.Fatal(err)
		}
	}

	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}

	for range 2 {
		if _, err := src.EmissionFactor(t.Context(), "petrol"); !errors.Is(err, lang.ErrNotFound) {
			t.Fatalf("EmissionFactor(petrol) error = %v", err)
		}
	}

	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (not-found is not cached)", inner.calls)
	}
}
