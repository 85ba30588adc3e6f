package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/ardnew/ecalc/factor"
	"github.com/ardnew/ecalc/lang"
	"github.com/ardnew/ecalc/log"
	"github.com/ardnew/ecalc/pkg"
)

// Settings are the evaluator flags shared by every command.
type Settings struct {
	Timezone  string            `default:"Local"                 help:"Default time zone for AS_TIMESTAMP."                    placeholder:"ZONE"`
	Locale    string            `default:"${defaultLocale}"      help:"Default BCP 47 locale for AS_TIMESTAMP."                placeholder:"TAG"`
	Precision int32             `default:"${defaultPrecision}"   help:"Fractional digits kept by division."`
	MaxDepth  int               `default:"${defaultMaxDepth}"    help:"Maximum nesting of REF formulas."`
	Factors   []string          `help:"Factor table in YAML (repeatable)."   placeholder:"FILE"       short:"F" type:"existingfile"`
	DB        string            `help:"SQLite factor database."              placeholder:"DSN"        name:"db"`
	Env       string            `help:"Initial variables (YAML or JSON)."    placeholder:"FILE"       short:"e" type:"existingfile"`
	Var       map[string]string `help:"Bind variable NAME to VALUE."         placeholder:"NAME=VALUE" short:"v"`
}

// Vars returns the kong variables referenced by the Settings tags.
func (*Settings) Vars() kong.Vars {
	return kong.Vars{
		"defaultLocale":    lang.DefaultLocale,
		"defaultPrecision": strconv.Itoa(int(lang.DefaultDivisionPrecision)),
		"defaultMaxDepth":  strconv.Itoa(lang.DefaultMaxDepth),
	}
}

// Group returns the help group for the Settings flags.
func (*Settings) Group() kong.Group {
	return kong.Group{Key: "calc", Title: "Evaluation options"}
}

// Location resolves the --timezone flag. "Local" and "" select the system
// zone.
func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, pkg.ErrInvalidTimezone.Wrap(err)
	}

	return loc, nil
}

// Environment loads the --env file, if any, and binds every --var on top.
func (s *Settings) Environment() (lang.Environment, error) {
	env := lang.Environment{}

	if s.Env != "" {
		f, err := os.Open(s.Env)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}
		defer f.Close()

		if env, err = lang.LoadEnvironment(f); err != nil {
			return nil, pkg.MakeError(err).Wrapf("environment %q", s.Env)
		}
	}

	for name, text := range s.Var {
		if name == "" {
			return nil, pkg.ErrInvalidVariable.Wrapf("empty name in %q", "="+text)
		}

		_ = env.Set(name, parseVar(text))
	}

	return env, nil
}

// parseVar reads a --var value: a number, a boolean, null, or otherwise
// text.
func parseVar(text string) lang.Value {
	if n, err := lang.NumberFromString(text); err == nil {
		return n
	}

	switch strings.ToLower(text) {
	case "true":
		return lang.NewBoolean(true)
	case "false":
		return lang.NewBoolean(false)
	case "null":
		return nil
	}

	return lang.NewString(text)
}

// Session is one evaluation context: an Evaluator wired to the configured
// factor sources and the Environment every formula in the session shares.
type Session struct {
	ID        uuid.UUID
	Logger    log.Logger
	Evaluator *lang.Evaluator
	Env       lang.Environment

	store *factor.Store
}

// Open builds a Session from the settings.
func (s *Settings) Open(ctx context.Context, opts ...lang.Option) (*Session, error) {
	id := uuid.New()
	logger := log.With(slog.String("session", id.String()))

	loc, err := s.Location()
	if err != nil {
		return nil, ErrSession.Wrap(err)
	}

	env, err := s.Environment()
	if err != nil {
		return nil, ErrSession.Wrap(err)
	}

	sess := &Session{ID: id, Logger: logger, Env: env}

	sources := make([]factor.Source, 0, len(s.Factors)+1)

	for _, path := range s.Factors {
		t, err := loadTable(ctx, path)
		if err != nil {
			return nil, ErrSession.Wrap(err).With(slog.String("factors", path))
		}

		logger.DebugContext(ctx, "factor table loaded",
			slog.String("path", path),
			slog.Int("entries", t.Len()))

		sources = append(sources, t)
	}

	if s.DB != "" {
		store, err := factor.Open(ctx, s.DB, factor.WithStoreLogger(logger))
		if err != nil {
			return nil, ErrSession.Wrap(err).With(slog.String("db", s.DB))
		}

		sess.store = store
		sources = append(sources, store)
	}

	evalOpts := []lang.Option{
		lang.WithLogger(logger),
		lang.WithLocation(loc),
		lang.WithLocale(s.Locale),
		lang.WithDivisionPrecision(s.Precision),
		lang.WithMaxDepth(s.MaxDepth),
		lang.WithParseCache(true),
	}

	if len(sources) > 0 {
		evalOpts = append(evalOpts, factor.Options(factor.Cached(factor.Chain(sources...)))...)
	}

	sess.Evaluator = lang.New(append(evalOpts, opts...)...)

	logger.DebugContext(ctx, "session open",
		slog.String("timezone", loc.String()),
		slog.String("locale", s.Locale),
		slog.Int("sources", len(sources)),
		slog.Int("variables", len(env)))

	return sess, nil
}

func loadTable(ctx context.Context, path string) (*factor.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}
	defer f.Close()

	return factor.LoadYAML(ctx, f)
}

// Store returns the factor database, or an error if --db was not given.
func (s *Session) Store() (*factor.Store, error) {
	if s.store == nil {
		return nil, pkg.ErrNoStore
	}

	return s.store, nil
}

// Close releases the factor database.
func (s *Session) Close() error {
	if s.store == nil {
		return nil
	}

	return s.store.Close()
}

// closeSession closes sess, joining any close error into *err.
func closeSession(sess *Session, err *error) {
	*err = errors.Join(*err, sess.Close())
}
