// Package cmd implements the ecalc subcommands.
//
// Every command that evaluates formulas opens a [Session] from the shared
// [Settings] flags: one Evaluator, one Environment, and the factor sources
// named by --factors and --db. Commands write to the kong context's stdout.
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the
	// configuration file.
	ConfigIdentifier = "config"
)
