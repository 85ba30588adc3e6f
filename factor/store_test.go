package factor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/lang"
	"github.com/ardnew/ecalc/log"
)

func openStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	s, err := Open(t.Context(), ":memory:", opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_PutLookup(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	puts := []struct {
		kind Kind
		key  string
		v    lang.Value
	}{
		{KindGWP, "CH4", lang.NumberFromInt(28)},
		{KindEmission, "diesel", lang.NewNumber(decimal.RequireFromString("2.68"))},
		{KindValue, "region", lang.String("EU")},
		{KindValue, "audited", lang.Boolean(true)},
		{KindValue, "unset", nil},
		{KindFormula, "fuel", lang.String("LOOKUP('diesel', :litres)")},
	}

	for _, p := range puts {
		if err := s.Put(ctx, p.kind, p.key, p.v, "test"); err != nil {
			t.Fatalf("Put(%s, %s) error = %v", p.kind, p.key, err)
		}
	}

	if d, err := s.GWP(ctx, "CH4"); err != nil || !d.Equal(decimal.NewFromInt(28)) {
		t.Errorf("GWP(CH4) = %s, %v, want 28", d, err)
	}

	if d, err := s.EmissionFactor(ctx, "diesel"); err != nil || d.String() != "2.68" {
		t.Errorf("EmissionFactor(diesel) = %s, %v, want 2.68", d, err)
	}

	for key, want := range map[string]lang.Value{
		"region":  lang.String("EU"),
		"audited": lang.Boolean(true),
		"unset":   nil,
	} {
		if v, err := s.Value(ctx, key); err != nil || !lang.Equal(v, want) {
			t.Errorf("Value(%s) = %v, %v, want %v", key, v, err, want)
		}
	}

	if f, err := s.Formula(ctx, "fuel"); err != nil || f != "LOOKUP('diesel', :litres)" {
		t.Errorf("Formula(fuel) = %q, %v", f, err)
	}

	if _, err := s.GWP(ctx, "SF6"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("GWP(SF6) error = %v, want not found", err)
	}

	if _, err := s.GWP(ctx, "diesel"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("GWP(diesel) error = %v, want not found (wrong kind)", err)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	for _, n := range []int64{25, 28} {
		if err := s.Put(ctx, KindGWP, "CH4", lang.NumberFromInt(n), "AR"); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.List(ctx, KindGWP)
	if err != nil {
		t.Fatal(err)
	}

	if len(recs) != 1 || recs[0].Text != "28" {
		t.Errorf("List() = %+v, want a single record with 28", recs)
	}

	hist, err := s.History(ctx, KindGWP, "CH4")
	if err != nil {
		t.Fatal(err)
	}

	if len(hist) != 2 {
		t.Fatalf("History() = %+v, want 2 revisions", hist)
	}

	if hist[0].Text != "28" || hist[0].Retired != 0 {
		t.Errorf("History()[0] = %+v, want active 28", hist[0])
	}

	if hist[1].Text != "25" || hist[1].Retired == 0 {
		t.Errorf("History()[1] = %+v, want retired 25", hist[1])
	}
}

func TestStore_Retire(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	put := func(n int64) {
		t.Helper()

		if err := s.Put(ctx, KindGWP, "CH4", lang.NumberFromInt(n), "test"); err != nil {
			t.Fatal(err)
		}
	}

	put(25)

	if err := s.Retire(ctx, KindGWP, "CH4"); err != nil {
		t.Fatalf("Retire() error = %v", err)
	}

	if _, err := s.GWP(ctx, "CH4"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("GWP(CH4) after retire error = %v, want not found", err)
	}

	if err := s.Retire(ctx, KindGWP, "CH4"); !errors.Is(err, lang.ErrNotFound) {
		t.Errorf("second Retire() error = %v, want not found", err)
	}

	put(28)

	if d, err := s.GWP(ctx, "CH4"); err != nil || !d.Equal(decimal.NewFromInt(28)) {
		t.Errorf("GWP(CH4) = %s, %v, want 28", d, err)
	}

	hist, err := s.History(ctx, KindGWP, "CH4")
	if err != nil {
		t.Fatal(err)
	}

	if len(hist) != 2 || hist[0].Text != "28" || hist[1].Text != "25" {
		t.Errorf("History() = %+v, want 28 then 25", hist)
	}
}

func TestStore_PutRejects(t *testing.T) {
	s := openStore(t)

	if err := s.Put(t.Context(), KindGWP, "CH4", lang.String("x"), ""); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Put(text gwp) error = %v, want not numeric", err)
	}

	var se *lang.SyntaxError
	if err := s.PutFormula(t.Context(), "bad", "1 +", ""); !errors.As(err, &se) {
		t.Errorf("PutFormula(bad) error = %v, want syntax error", err)
	}
}

func TestStore_Import(t *testing.T) {
	var buf bytes.Buffer

	s := openStore(t, WithStoreLogger(log.Make(&buf, log.WithLevel(log.LevelTrace))))
	ctx := t.Context()

	if err := s.Import(ctx, loadSample(t), "sample.yaml"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	recs, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if len(recs) != 7 {
		t.Errorf("List() returned %d records, want 7", len(recs))
	}

	ev := lang.New(Options(Cached(s))...)
	env := lang.Environment{"litres": lang.NumberFromInt(100), "kg": lang.NumberFromInt(2)}

	v, err := ev.Evaluate(ctx, "REF('total')", env)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !lang.Equal(v, lang.NumberFromInt(324)) {
		t.Errorf("Evaluate() = %s, want 324", lang.Format(v))
	}

	if !strings.Contains(buf.String(), `"msg":"sql"`) {
		t.Error("store did not log statements at trace level")
	}
}
