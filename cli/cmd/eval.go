package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/ecalc/lang"
)

// Eval evaluates formulas in order against one shared environment.
type Eval struct {
	Output `embed:""`

	Expressions []string `arg:"" help:"Formulas to evaluate, or '-' to read one per line from stdin." name:"expression"`
	DumpEnv     bool     `       help:"Print the environment after the last formula."`
	KeepGoing   bool     `       help:"Continue after a failed formula."                             short:"k"`

	stdin io.Reader `kong:"-"`
}

// evaluation is the rendered outcome of one formula.
type evaluation struct {
	Expression string     `json:"expression"      yaml:"expression"`
	Result     lang.Value `json:"result"          yaml:"result"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

type evalReport struct {
	Results     []evaluation     `json:"results"               yaml:"results"`
	Environment lang.Environment `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, settings *Settings) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdin := e.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	exprs, err := expressions(e.Expressions, stdin)
	if err != nil {
		return err
	}

	sess, err := settings.Open(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	var (
		report evalReport
		failed error
	)

	for _, expr := range exprs {
		v, err := sess.Evaluator.Evaluate(ctx, expr, sess.Env)
		if err != nil {
			sess.Logger.DebugContext(ctx, "formula failed",
				slog.String("expression", expr),
				slog.Any("error", err))

			report.Results = append(report.Results, evaluation{Expression: expr, Error: err.Error()})

			if failed == nil {
				failed = ErrEvaluate.Wrap(err).With(slog.String("expression", expr))
			}

			if !e.KeepGoing {
				break
			}

			continue
		}

		report.Results = append(report.Results, evaluation{Expression: expr, Result: v})
	}

	if e.DumpEnv {
		report.Environment = sess.Env
	}

	err = e.render(stdout(ctx), report, func(w io.Writer) error {
		for _, r := range report.Results {
			if r.Error != "" {
				fmt.Fprintf(w, "error: %s\n", r.Error)

				continue
			}

			fmt.Fprintln(w, display(r.Result))
		}

		if e.DumpEnv {
			writeEnvironment(w, sess.Env)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return failed
}

// display renders a result for humans: text unquoted, null as "null".
func display(v lang.Value) string {
	if v == nil {
		return "null"
	}

	return v.String()
}

func writeEnvironment(w io.Writer, env lang.Environment) {
	for _, name := range env.Keys() {
		fmt.Fprintf(w, "%s = %s\n", name, lang.Format(env[name]))
	}
}
