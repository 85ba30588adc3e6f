package cmd

import (
	"context"

	"github.com/ardnew/ecalc/cli/cmd/repl"
)

// Repl evaluates formulas interactively in one shared environment.
type Repl struct {
	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, settings *Settings) (err error) {
	sess, err := settings.Open(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	cacheDir := variable(ctx, CacheIdentifier)
	if r.NoHistory {
		cacheDir = ""
	}

	return repl.Run(ctx, sess.Evaluator, sess.Env, cacheDir, sess.Logger)
}
