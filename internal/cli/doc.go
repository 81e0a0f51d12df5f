// Package cli wires together the Cobra command tree for the termexplain binary.
//
// The root command explains error text taken from its arguments, stdin, an
// interactive prompt or a failing --file run. Subcommands manage the cache,
// configuration, providers and the shell helper. Handlers report runtime
// failures through exit codes rather than terminating the process.
package cli
