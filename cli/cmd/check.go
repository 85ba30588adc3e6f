package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/ecalc/lang"
)

// Check parses formulas without evaluating them.
type Check struct {
	Output `embed:""`

	Expressions []string `arg:"" help:"Formulas to check, or '-' to read one per line from stdin." name:"expression"`

	stdin io.Reader `kong:"-"`
}

type diagnosis struct {
	Expression string         `json:"expression"         yaml:"expression"`
	Valid      bool           `json:"valid"              yaml:"valid"`
	Variables  []string       `json:"variables,omitempty" yaml:"variables,omitempty"`
	Error      string         `json:"error,omitempty"    yaml:"error,omitempty"`
	Position   *lang.Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// Run executes the check command. It fails if any formula is invalid.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdin := c.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	exprs, err := expressions(c.Expressions, stdin)
	if err != nil {
		return err
	}

	var (
		report  []diagnosis
		invalid int
	)

	for _, expr := range exprs {
		d := diagnosis{Expression: expr}

		tree, err := lang.Parse(ctx, expr)
		if err != nil {
			invalid++
			d.Error = err.Error()

			var se *lang.SyntaxError
			if errors.As(err, &se) {
				d.Position = &se.Position
			}
		} else {
			d.Valid = true
			d.Variables = tree.Variables()
		}

		report = append(report, d)
	}

	err = c.render(stdout(ctx), report, func(w io.Writer) error {
		for _, d := range report {
			writeDiagnosis(w, d)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if invalid > 0 {
		return ErrParse.With(slog.Int("invalid", invalid), slog.Int("total", len(exprs)))
	}

	return nil
}

func writeDiagnosis(w io.Writer, d diagnosis) {
	if d.Valid {
		fmt.Fprintf(w, "ok    %s", d.Expression)

		if len(d.Variables) > 0 {
			fmt.Fprintf(w, "  (uses %s)", strings.Join(d.Variables, ", "))
		}

		fmt.Fprintln(w)

		return
	}

	fmt.Fprintf(w, "FAIL  %s\n", d.Expression)

	// The caret lines up only for single-line formulas.
	if d.Position != nil && d.Position.Line == 1 {
		fmt.Fprintf(w, "      %s^\n", strings.Repeat(" ", d.Position.Column))
	}

	fmt.Fprintf(w, "      %s\n", d.Error)
}

// Fmt prints formulas in canonical form, with every binary operation
// parenthesized.
type Fmt struct {
	Expressions []string `arg:"" help:"Formulas to format, or '-' to read one per line from stdin." name:"expression"`

	stdin io.Reader `kong:"-"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) error {
	stdin := f.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	exprs, err := expressions(f.Expressions, stdin)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for _, expr := range exprs {
		tree, err := lang.Parse(ctx, expr)
		if err != nil {
			return ErrParse.Wrap(err).With(slog.String("expression", expr))
		}

		fmt.Fprintln(w, tree.String())
	}

	return nil
}

// Tree prints the syntax tree of a formula.
type Tree struct {
	Expression string `arg:"" help:"Formula to parse." name:"expression"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	tree, err := lang.Parse(ctx, t.Expression)
	if err != nil {
		return ErrParse.Wrap(err).With(slog.String("expression", t.Expression))
	}

	tree.Print(stdout(ctx))

	return nil
}
