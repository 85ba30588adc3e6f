package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/ecalc/pkg"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer commands print to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// variable returns the kong variable named id, or "".
func variable(ctx context.Context, id string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Model.Vars()[id]
	}

	return ""
}

// stdinSource is the argument that reads formulas from stdin.
const stdinSource = "-"

// expressions expands args into formulas. Every "-" is replaced by the
// non-blank lines of stdin, which is read at most once.
func expressions(args []string, stdin io.Reader) ([]string, error) {
	var (
		out  []string
		read bool
	)

	for _, arg := range args {
		if arg != stdinSource {
			out = append(out, arg)

			continue
		}

		if read || stdin == nil {
			continue
		}

		read = true

		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				out = append(out, line)
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}
	}

	return out, nil
}

// Output selects how a command renders its results.
type Output struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"o"`
}

// render writes v to w as JSON or YAML, or calls text for the text format.
func (o Output) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch o.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	case "", "text":
		return text(w)
	}

	return pkg.ErrInvalidFormat.Wrapf("%q (want text, json or yaml)", o.Output)
}
