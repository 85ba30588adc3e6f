// Package cli contains the command line interface for ecalc.
//
// # Usage
//
// Formulas given as arguments are evaluated by default, one result per line:
//
//	ecalc '2 * 3.5' 'CONCAT(5, "kg")'
//	ecalc -v litres=20 -F ghg.yaml "LOOKUP('diesel', :litres)"
//
// The argument "-" reads formulas from standard input, one per line.
//
// # Commands
//
//   - eval: Evaluate formulas (default)
//   - check: Parse formulas and report syntax errors
//   - fmt: Print formulas in canonical form
//   - tree: Print the syntax tree of a formula
//   - functions: List keyword functions
//   - factors: Manage the SQLite factor database
//   - repl: Evaluate formulas interactively
//   - init: Write the current flags to the configuration file
//
// # Configuration
//
// Flags may also be set in ~/.config/ecalc/config.yaml, keyed by flag name.
// Flags given on the command line take precedence:
//
//	locale: de-DE
//	timezone: Europe/Berlin
//	db: ~/.local/share/ecalc/factors.db
//	log-level: debug
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o ecalc .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/ecalc/pprof)
//
// # Examples
//
//	# Debug logging with CPU profiling
//	ecalc --log-level=debug --pprof-mode=cpu 'IMPACT("CH4", 2)'
//
//	# Evaluate a file of formulas against a factor database
//	ecalc --db factors.db - < formulas.txt
package cli
