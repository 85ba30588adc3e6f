package factor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/lang"
)

// Table is an in-memory [Source]. It is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	gwp      map[string]decimal.Decimal
	emission map[string]decimal.Decimal
	values   map[string]lang.Value
	formulas map[string]string
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		gwp:      map[string]decimal.Decimal{},
		emission: map[string]decimal.Decimal{},
		values:   map[string]lang.Value{},
		formulas: map[string]string{},
	}
}

// Put stores v under kind and key. GWP and emission factors must be
// numbers; formulas must be strings that parse.
func (t *Table) Put(ctx context.Context, kind Kind, key string, v lang.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch kind {
	case KindGWP, KindEmission:
		n, ok := v.(lang.Number)
		if !ok {
			return ErrNotNumeric.With(slog.String("kind", string(kind)), slog.String("key", key))
		}

		if kind == KindGWP {
			t.gwp[key] = n.Decimal()
		} else {
			t.emission[key] = n.Decimal()
		}

	case KindValue:
		t.values[key] = v

	case KindFormula:
		s, ok := v.(lang.String)
		if !ok {
			return ErrInvalidTable.With(slog.String("formula", key))
		}

		if _, err := lang.Parse(ctx, s.Text()); err != nil {
			return ErrInvalidTable.Wrap(err).With(slog.String("formula", key))
		}

		t.formulas[key] = s.Text()

	default:
		return ErrUnknownKind.With(slog.String("kind", string(kind)))
	}

	return nil
}

// Keys returns the sorted keys stored under kind.
func (t *Table) Keys(kind Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch kind {
	case KindGWP:
		return slices.Sorted(maps.Keys(t.gwp))
	case KindEmission:
		return slices.Sorted(maps.Keys(t.emission))
	case KindValue:
		return slices.Sorted(maps.Keys(t.values))
	case KindFormula:
		return slices.Sorted(maps.Keys(t.formulas))
	}

	return nil
}

// Len returns the number of entries of every kind.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.gwp) + len(t.emission) + len(t.values) + len(t.formulas)
}

func (t *Table) GWP(_ context.Context, key string) (decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.gwp[key]
	if !ok {
		return decimal.Decimal{}, notFound(KindGWP, key)
	}

	return d, nil
}

func (t *Table) EmissionFactor(_ context.Context, key string) (decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.emission[key]
	if !ok {
		return decimal.Decimal{}, notFound(KindEmission, key)
	}

	return d, nil
}

func (t *Table) Value(_ context.Context, key string) (lang.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.values[key]
	if !ok {
		return nil, notFound(KindValue, key)
	}

	return v, nil
}

func (t *Table) Formula(_ context.Context, key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.formulas[key]
	if !ok {
		return "", notFound(KindFormula, key)
	}

	return s, nil
}

// document is the YAML layout read by LoadYAML:
//
//	gwp:
//	  CH4: 28
//	emission:
//	  diesel: 2.68
//	values:
//	  fleet.size: 12
//	formulas:
//	  fuel: LOOKUP('diesel', :litres)
type document struct {
	GWP      lang.Environment  `yaml:"gwp"`
	Emission lang.Environment  `yaml:"emission"`
	Values   lang.Environment  `yaml:"values"`
	Formulas map[string]string `yaml:"formulas"`
}

// LoadYAML reads a factor table from r.
func LoadYAML(ctx context.Context, r io.Reader) (*Table, error) {
	var doc document

	if err := yaml.NewDecoder(r).DecodeContext(ctx, &doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrInvalidTable.Wrap(err)
	}

	t := NewTable()

	for kind, env := range map[Kind]lang.Environment{
		KindGWP:      doc.GWP,
		KindEmission: doc.Emission,
		KindValue:    doc.Values,
	} {
		for key, v := range env {
			if err := t.Put(ctx, kind, key, v); err != nil {
				return nil, err
			}
		}
	}

	for key, text := range doc.Formulas {
		if err := t.Put(ctx, KindFormula, key, lang.String(text)); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Each calls fn for every entry in kind order, then key order. It stops at
// the first error.
func (t *Table) Each(fn func(kind Kind, key string, v lang.Value) error) error {
	for _, kind := range Kinds() {
		for _, key := range t.Keys(kind) {
			var v lang.Value

			t.mu.RLock()
			switch kind {
			case KindGWP:
				v = lang.NewNumber(t.gwp[key])
			case KindEmission:
				v = lang.NewNumber(t.emission[key])
			case KindValue:
				v = t.values[key]
			case KindFormula:
				v = lang.String(t.formulas[key])
			}
			t.mu.RUnlock()

			if err := fn(kind, key, v); err != nil {
				return err
			}
		}
	}

	return nil
}
