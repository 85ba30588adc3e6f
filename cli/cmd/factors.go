package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ardnew/ecalc/factor"
	"github.com/ardnew/ecalc/lang"
)

// Factors manages the factor database named by --db.
type Factors struct {
	List    FactorsList    `cmd:"" default:"withargs" help:"List active factors."`
	Import  FactorsImport  `cmd:""                    help:"Import YAML factor tables."`
	Put     FactorsPut     `cmd:""                    help:"Store one factor."`
	Retire  FactorsRetire  `cmd:""                    help:"Hide a factor from lookups."`
	History FactorsHistory `cmd:""                    help:"Show every stored revision of a factor."`
}

// withStore opens a session and runs fn with its factor database.
func withStore(
	ctx context.Context,
	settings *Settings,
	fn func(*Session, *factor.Store) error,
) (err error) {
	sess, err := settings.Open(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	store, err := sess.Store()
	if err != nil {
		return err
	}

	if err := fn(sess, store); err != nil {
		return ErrFactors.Wrap(err)
	}

	return nil
}

func writeRecords(w io.Writer, records []factor.Record, retired bool) error {
	headers := []string{"KIND", "KEY", "VALUE", "SOURCE", "UPDATED"}
	if retired {
		headers = append(headers, "RETIRED")
	}

	t := newTable(headers...)

	for _, r := range records {
		row := []string{
			string(r.Kind), r.Key, r.Text, r.Source,
			r.UpdatedAt.Local().Format(time.DateTime),
		}

		if retired {
			stamp := ""
			if r.Retired > 0 {
				stamp = time.UnixMilli(int64(r.Retired)).Local().Format(time.DateTime)
			}

			row = append(row, stamp)
		}

		t.Row(row...)
	}

	_, err := fmt.Fprintln(w, t.String())

	return err
}

// FactorsList lists active factors, optionally of one kind.
type FactorsList struct {
	Output `embed:""`

	Kind string `arg:"" help:"Only list this kind (gwp, emission, value, formula)." optional:""`
}

// Run executes the factors list command.
func (l *FactorsList) Run(ctx context.Context, settings *Settings) error {
	var kind factor.Kind

	if l.Kind != "" {
		k, err := factor.ParseKind(l.Kind)
		if err != nil {
			return err
		}

		kind = k
	}

	return withStore(ctx, settings, func(_ *Session, store *factor.Store) error {
		records, err := store.List(ctx, kind)
		if err != nil {
			return err
		}

		return l.render(stdout(ctx), records, func(w io.Writer) error {
			return writeRecords(w, records, false)
		})
	})
}

// FactorsImport loads YAML factor tables into the database.
type FactorsImport struct {
	Files  []string `arg:"" help:"Factor tables to import." type:"existingfile"`
	Source string   `help:"Provenance recorded with each factor (default: the file name)."`
}

// Run executes the factors import command.
func (i *FactorsImport) Run(ctx context.Context, settings *Settings) error {
	return withStore(ctx, settings, func(sess *Session, store *factor.Store) error {
		for _, path := range i.Files {
			t, err := loadTable(ctx, path)
			if err != nil {
				return err
			}

			source := i.Source
			if source == "" {
				source = path
			}

			if err := store.Import(ctx, t, source); err != nil {
				return err
			}

			sess.Logger.InfoContext(ctx, "factors imported",
				slog.String("path", path),
				slog.Int("entries", t.Len()))
		}

		return nil
	})
}

// FactorsPut stores a single factor, replacing the active one.
type FactorsPut struct {
	Kind   string `arg:"" help:"Factor kind (gwp, emission, value, formula)."`
	Key    string `arg:"" help:"Factor key."`
	Value  string `arg:"" help:"Number, boolean, text, or formula text."`
	Source string `help:"Provenance recorded with the factor."`
}

// Run executes the factors put command.
func (p *FactorsPut) Run(ctx context.Context, settings *Settings) error {
	kind, err := factor.ParseKind(p.Kind)
	if err != nil {
		return err
	}

	v := parseVar(p.Value)
	if kind == factor.KindFormula {
		v = lang.NewString(p.Value)
	}

	return withStore(ctx, settings, func(_ *Session, store *factor.Store) error {
		return store.Put(ctx, kind, p.Key, v, p.Source)
	})
}

// FactorsRetire hides the active factor of a kind and key.
type FactorsRetire struct {
	Kind string `arg:"" help:"Factor kind."`
	Key  string `arg:"" help:"Factor key."`
}

// Run executes the factors retire command.
func (r *FactorsRetire) Run(ctx context.Context, settings *Settings) error {
	kind, err := factor.ParseKind(r.Kind)
	if err != nil {
		return err
	}

	return withStore(ctx, settings, func(_ *Session, store *factor.Store) error {
		return store.Retire(ctx, kind, r.Key)
	})
}

// FactorsHistory shows every revision of a factor, newest first.
type FactorsHistory struct {
	Output `embed:""`

	Kind string `arg:"" help:"Factor kind."`
	Key  string `arg:"" help:"Factor key."`
}

// Run executes the factors history command.
func (h *FactorsHistory) Run(ctx context.Context, settings *Settings) error {
	kind, err := factor.ParseKind(h.Kind)
	if err != nil {
		return err
	}

	return withStore(ctx, settings, func(_ *Session, store *factor.Store) error {
		records, err := store.History(ctx, kind, h.Key)
		if err != nil {
			return err
		}

		return h.render(stdout(ctx), records, func(w io.Writer) error {
			return writeRecords(w, records, true)
		})
	})
}
