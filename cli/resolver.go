package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/ecalc/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files
// such as the one written by the init command:
//
//	locale: de-DE
//	precision: 16
//	factors:
//	  - /etc/ecalc/ghg.yaml
//	log-level: debug
//
// Keys are flag names; underscores may stand in for hyphens. Command-line
// flags override configuration values. A file that is not a YAML mapping
// is reported and ignored.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var raw map[string]any

		if err := yaml.NewDecoder(r).DecodeContext(ctx, &raw); err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.Any("error", err))

			return config{}, nil
		}

		conf := make(config, len(raw))
		for k, v := range raw {
			conf[strings.ReplaceAll(k, "_", "-")] = flagValue(v)
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value into a form Kong's mappers
// accept: numbers become their decimal text, and lists and mappings are
// converted element-wise.
func flagValue(v any) any {
	switch t := v.(type) {
	case int, int64, uint64, float64:
		return fmt.Sprint(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = flagValue(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
