package lang

import (
	"context"
	"strings"
	"time"

	"github.com/ardnew/ecalc/log"
)

// Option configures an [Evaluator].
type Option func(*Evaluator)

// Function implements a custom function or a keyword extension. Arguments
// are evaluated before the call.
type Function func(ctx context.Context, args Arguments) (Value, error)

// Arguments holds the evaluated arguments of a call.
type Arguments struct {
	Positional []Value
	Named      map[string]Value
}

const (
	// DefaultDivisionPrecision is the number of fractional digits kept by
	// division and fractional exponents.
	DefaultDivisionPrecision int32 = 32
	// DefaultMaxDepth bounds nested REF evaluation.
	DefaultMaxDepth = 100
	// DefaultLocale is the BCP 47 locale used by AS_TIMESTAMP.
	DefaultLocale = "en-US"
)

func applyDefaults(ev *Evaluator) {
	ev.location = time.Local
	ev.locale = DefaultLocale
	ev.clock = time.Now
	ev.precision = DefaultDivisionPrecision
	ev.maxDepth = DefaultMaxDepth
	ev.extensions = map[string]Function{}
	ev.functions = map[string]Function{}
}

// WithGWP sets the global warming potential resolver used by IMPACT.
func WithGWP(r GWP) Option {
	return func(ev *Evaluator) { ev.gwp = r }
}

// WithEmissionFactors sets the emission factor resolver used by LOOKUP.
func WithEmissionFactors(r EmissionFactors) Option {
	return func(ev *Evaluator) { ev.emission = r }
}

// WithCalculations sets the value resolver used by GET_VALUE.
func WithCalculations(r Calculations) Option {
	return func(ev *Evaluator) { ev.calculations = r }
}

// WithFormulas sets the formula resolver used by REF.
func WithFormulas(r Formulas) Option {
	return func(ev *Evaluator) { ev.formulas = r }
}

// WithUnits sets the converter used by CONVERT.
func WithUnits(u Units) Option {
	return func(ev *Evaluator) { ev.units = u }
}

// WithExtension overrides the keyword function named by keyword, or
// provides the only implementation for keywords without built-in semantics
// such as CAML.
func WithExtension(keyword string, fn Function) Option {
	return func(ev *Evaluator) {
		ev.extensions[strings.ToUpper(keyword)] = fn
	}
}

// WithFunction registers a custom function callable as name(args...).
// Names are matched case-insensitively.
func WithFunction(name string, fn Function) Option {
	return func(ev *Evaluator) {
		ev.functions[strings.ToLower(name)] = fn
	}
}

// WithLocation sets the default time zone for AS_TIMESTAMP.
func WithLocation(loc *time.Location) Option {
	return func(ev *Evaluator) {
		if loc != nil {
			ev.location = loc
		}
	}
}

// WithLocale sets the default BCP 47 locale for AS_TIMESTAMP.
func WithLocale(locale string) Option {
	return func(ev *Evaluator) {
		if locale != "" {
			ev.locale = locale
		}
	}
}

// WithClock sets the time source used to measure evaluations in trace
// logs.
func WithClock(now func() time.Time) Option {
	return func(ev *Evaluator) {
		if now != nil {
			ev.clock = now
		}
	}
}

// WithDivisionPrecision sets the fractional digits kept by division and
// fractional exponents. Non-positive values are ignored.
func WithDivisionPrecision(digits int32) Option {
	return func(ev *Evaluator) {
		if digits > 0 {
			ev.precision = digits
		}
	}
}

// WithMaxDepth bounds nested REF evaluation. Non-positive values are
// ignored.
func WithMaxDepth(depth int) Option {
	return func(ev *Evaluator) {
		if depth > 0 {
			ev.maxDepth = depth
		}
	}
}

// WithLogger sets the logger for trace output.
func WithLogger(logger log.Logger) Option {
	return func(ev *Evaluator) { ev.logger = logger }
}

// WithParseCache enables sharing parsed trees across evaluations of the
// same expression text.
func WithParseCache(enable bool) Option {
	return func(ev *Evaluator) {
		if enable {
			ev.cache = &parseCache{}
		} else {
			ev.cache = nil
		}
	}
}
