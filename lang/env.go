package lang

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Environment maps variable keys to values. It is owned by the caller and
// passed by reference to every evaluation, so bindings made by `set` and
// ASSIGN_TO_GROUP are visible to later evaluations that share it.
//
// An Environment has a single writer at a time: evaluations that share one
// instance must be serialized by the caller. A nil Environment reads as
// empty and rejects writes with [ErrNilEnvironment].
type Environment map[string]Value

// Get returns the value bound to name. A key bound to null reports ok.
func (e Environment) Get(name string) (Value, bool) {
	v, ok := e[name]

	return v, ok
}

// Set binds name to v.
func (e Environment) Set(name string, v Value) error {
	if e == nil {
		return ErrNilEnvironment.With(slog.String("name", name))
	}

	e[name] = v

	return nil
}

// Keys returns the bound keys in sorted order.
func (e Environment) Keys() []string {
	return slices.Sorted(maps.Keys(e))
}

// Native returns a map of JSON-compatible values.
func (e Environment) Native() map[string]any {
	out := make(map[string]any, len(e))
	for k, v := range e {
		out[k] = Native(v)
	}

	return out
}

// UnmarshalJSON decodes an object of numbers, strings, booleans, and nulls.
// Numbers keep their exact decimal text.
func (e *Environment) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return ErrInvalidValue.Wrap(err)
	}

	return e.fill(raw)
}

// UnmarshalYAML decodes a mapping of scalars. Numbers keep their exact
// decimal text.
func (e *Environment) UnmarshalYAML(data []byte) error {
	var raw map[string]scalar
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ErrInvalidValue.Wrap(err)
	}

	env := make(Environment, len(raw))
	for k, s := range raw {
		env[k] = s.v
	}

	*e = env

	return nil
}

// scalar is one YAML mapping value. The decoder hands it the node's source
// text, so numbers are built from their literal digits rather than a float.
type scalar struct{ v Value }

func (s *scalar) UnmarshalYAML(data []byte) error {
	var native any
	if err := yaml.Unmarshal(data, &native); err != nil {
		return err
	}

	switch native.(type) {
	case int, int64, uint64, float64:
		if n, err := NumberFromString(strings.TrimSpace(string(data))); err == nil {
			s.v = n

			return nil
		}
	}

	v, err := ValueOf(native)
	if err != nil {
		return err
	}

	s.v = v

	return nil
}

func (e *Environment) fill(raw map[string]any) error {
	env := make(Environment, len(raw))

	for k, native := range raw {
		v, err := ValueOf(native)
		if err != nil {
			return ErrInvalidValue.Wrap(err).With(slog.String("name", k))
		}

		env[k] = v
	}

	*e = env

	return nil
}

// LoadEnvironment reads a YAML (or JSON) mapping of variable keys to
// scalar values.
func LoadEnvironment(r io.Reader) (Environment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	env := Environment{}

	if len(bytes.TrimSpace(data)) == 0 {
		return env, nil
	}

	if err := env.UnmarshalYAML(data); err != nil {
		return nil, err
	}

	return env, nil
}
