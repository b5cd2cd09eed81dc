// Package cmd implements the wz subcommands: run, repl, fmt and init.
//
// Each command is a kong command struct whose Run method receives the
// [context.Context] bound by the cli package. Values shared across
// commands, such as the parsed [kong.Context] and the include path, travel
// in that context.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration script.
	ConfigIdentifier = "config"
)
