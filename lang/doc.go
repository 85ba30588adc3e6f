// Package lang parses and evaluates carbon-accounting formulas.
//
// A formula is a single expression over exact decimal numbers, strings, and
// booleans, with variables drawn from a caller-owned [Environment] and
// keyword functions that resolve emission data through pluggable
// collaborators.
//
// # Grammar
//
// Informal EBNF, lowest precedence first:
//
//	Formula     → ' '? Expression ' '? EOF
//	Expression  → Additive (CompareOp Additive)*
//	Additive    → Term (('+' | '-') Term)*
//	Term        → Unary (('*' | '/') Unary)*
//	Unary       → '-' Unary | Power
//	Power       → Primary ('^' Unary)?
//	Primary     → NUMBER | SCIENTIFIC_NUMBER | QUOTED_STRING | BOOLEAN | NULL
//	            | TOKEN | '(' Expression ')' | Assign | Call
//	Assign      → SET TOKEN '=' Expression
//	Call        → (KEYWORD | CUSTOM_FUNCTION) '(' Args? ')'
//	Args        → Arg (',' Arg)*
//	Arg         → (NAME '=')? Expression
//	CompareOp   → '<' | '<=' | '>' | '>=' | '==' | '!='
//
// Spaces are significant to the grammar only as optional separators between
// tokens; they appear in the expected set of syntax diagnostics. Keywords
// are case-insensitive. Variables are written :name, where name may contain
// letters, digits, '_', '.', and ':', or :'quoted text' for any other key.
//
// # Example
//
//	set :fuel = CONVERT(:litres, 'L', 'gal')
//	LOOKUP('diesel', :fuel) + IMPACT('CH4', :methane)
//
// # Values
//
// [Number] wraps a [decimal.Decimal], so 0.1 + 0.2 == 0.3 exactly. Division
// and fractional powers keep [DefaultDivisionPrecision] digits unless
// configured with [WithDivisionPrecision]. Null is the nil [Value].
//
// # Errors
//
// [Parse] returns a [*SyntaxError] for the first invalid token. Evaluation
// returns an [*EvaluationError] whose Kind matches one of the sentinels
// [ErrUnknownVariable], [ErrTypeMismatch], [ErrFunctionArgument],
// [ErrArithmetic], [ErrExternalLookup], or [ErrNilEnvironment] with
// [errors.Is]. Both carry the position of the offending node.
//
// # Collaborators
//
// IMPACT, LOOKUP, GET_VALUE, and REF call the [GWP], [EmissionFactors],
// [Calculations], and [Formulas] resolvers configured on the [Evaluator].
// A resolver reports a missing key with an error matching [ErrNotFound];
// any resolver error is surfaced as an ExternalLookup error without retry.
// CONVERT uses the [github.com/ardnew/ecalc/units] table unless replaced
// with [WithUnits].
//
// # Logging
//
// The evaluator logs parse, call, and resolver activity at trace level
// through the [log.Logger] given to [WithLogger]. The zero logger discards
// everything.
package lang
