package units

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value string
		from  string
		to    string
		want  string
	}{
		{"identity", "12.5", "kg", "kg", "12.5"},
		{"tonne to kg", "2", "t", "kg", "2000"},
		{"kg to tonne", "1500", "kg", "tonne", "1.5"},
		{"pound to kg", "1", "lb", "kg", "0.45359237"},
		{"kwh to mj", "1", "kWh", "MJ", "3.6"},
		{"mwh to kwh", "1", "MWh", "kwh", "1000"},
		{"gallon to liter", "1", "gal", "L", "3.785411784"},
		{"mile to km", "1", "mi", "km", "1.609344"},
		{"alias and case", "3", " Kilograms ", "G", "3000"},
	}

	c := NewConverter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(t.Context(), decimal.RequireFromString(tt.value), tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Errorf("Convert() = %s, want %s", got, want)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want error
	}{
		{"unknown source", "furlong", "m", ErrUnknownUnit},
		{"unknown target", "m", "parsec", ErrUnknownUnit},
		{"mass to energy", "kg", "kWh", ErrIncompatible},
		{"volume to distance", "L", "km", ErrIncompatible},
	}

	c := NewConverter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Convert(t.Context(), decimal.NewFromInt(1), tt.from, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("Convert() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWithUnit(t *testing.T) {
	c := NewConverter(WithUnit(Unit{
		Name:      "hand",
		Dimension: Distance,
		Factor:    decimal.RequireFromString("0.1016"),
	}, "hands"))

	got, err := c.Convert(t.Context(), decimal.NewFromInt(10), "hands", "m")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if want := decimal.RequireFromString("1.016"); !got.Equal(want) {
		t.Errorf("Convert() = %s, want %s", got, want)
	}
}

func TestUnits(t *testing.T) {
	var names []string

	for u := range NewConverter().Units(Energy) {
		if u.Dimension != Energy {
			t.Errorf("Units(Energy) yielded %s (%s)", u.Name, u.Dimension)
		}

		names = append(names, u.Name)
	}

	if len(names) != 12 {
		t.Errorf("Units(Energy) yielded %d units, want 12: %v", len(names), names)
	}

	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Units() not sorted: %v", names)

			break
		}
	}
}
