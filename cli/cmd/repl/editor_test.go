package repl

import (
	"bytes"
	"testing"

	"github.com/ardnew/ecalc/lang"
)

func TestMarshalEnvironment_RoundTrip(t *testing.T) {
	num, err := lang.NumberFromString("12.5")
	if err != nil {
		t.Fatal(err)
	}

	env := lang.Environment{
		"amount":  num,
		"fuel":    lang.NewString("diesel"),
		"numeric": lang.NewString("42"),
		"flag":    lang.NewBoolean(true),
		"missing": nil,
	}

	data, err := marshalEnvironment(env)
	if err != nil {
		t.Fatalf("marshalEnvironment(): %v", err)
	}

	got, err := lang.LoadEnvironment(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadEnvironment(%q): %v", data, err)
	}

	for _, key := range env.Keys() {
		want, _ := env.Get(key)

		v, ok := got.Get(key)
		if !ok {
			t.Errorf("%s: missing after round trip", key)

			continue
		}

		if !lang.Equal(v, want) {
			t.Errorf("%s = %s, want %s", key, lang.Format(v), lang.Format(want))
		}
	}
}

func TestMarshalEnvironment_Empty(t *testing.T) {
	data, err := marshalEnvironment(lang.Environment{})
	if err != nil || len(data) != 0 {
		t.Errorf("marshalEnvironment(empty) = %q, %v; want empty", data, err)
	}
}
