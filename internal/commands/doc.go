// Package commands wires the gitferry subcommands: collect, apply, and
// the image ferry. Command code loads configuration, builds the
// concrete collaborators, and hands off to the migrate orchestrators.
package commands
